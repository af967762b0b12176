// Package assistant builds the prompts sent to the model and parses the
// structured answers it returns.
package assistant
