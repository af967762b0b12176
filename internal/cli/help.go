package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sasanktumpati/polyglot/internal/providers"
)

const version = "0.1.0"

func printHelp(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "polyglot v%s\n", version)
	fmt.Fprintln(tw, "Multi-language chat: each question is answered by the agent for its language.")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "USAGE")
	fmt.Fprintln(tw, "  polyglot [flags]\tinteractive chat")
	fmt.Fprintln(tw, "  polyglot [flags] \"question\"\tanswer one question and exit")
	fmt.Fprintln(tw, "  polyglot --demo [flags]\trun the built-in examples")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "FLAGS")
	fmt.Fprintln(tw, "  -d, --debug\tshow routing diagnostics")
	fmt.Fprintln(tw, "  --demo\trun the demonstration")
	fmt.Fprintf(tw, "  -p, --provider <name>\tmodel provider (%s, custom)\n", strings.Join(providers.SupportedProviders(), ", "))
	fmt.Fprintln(tw, "  -m, --model <id>\tmodel to use")
	fmt.Fprintln(tw, "  --classifier <auto|local|model>\thow the query language is detected (default: auto)")
	fmt.Fprintln(tw, "  --min-confidence <0..1>\tlocal guesses below this go to the model (default: 0.8)")
	fmt.Fprintln(tw, "  --timeout <dur|sec>\trequest timeout (default: 90s)")
	fmt.Fprintln(tw, "  --no-stream\twait for the full answer before printing")
	fmt.Fprintln(tw, "  --no-markdown\tdisable markdown rendering")
	fmt.Fprintln(tw, "  --env-file <path>\tdotenv file to load (default: .env)")
	fmt.Fprintln(tw, "  --languages\tprint the supported languages and exit")
	fmt.Fprintln(tw, "  -h, --help\tshow help")
	fmt.Fprintln(tw, "  -v, --version\tshow version")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ENVIRONMENT")
	fmt.Fprintln(tw, "  GOOGLE_API_KEY\tGemini API key (required for the default provider)")
	fmt.Fprintln(tw, "  POLYGLOT_PROVIDER\tdefault: gemini")
	fmt.Fprintln(tw, "  POLYGLOT_MODEL\tdefault: gemini-2.0-flash")
	fmt.Fprintln(tw, "  POLYGLOT_SUPPORTED_LANGUAGES\tdefault: English,Japanese,Chinese,German")
	fmt.Fprintln(tw, "  POLYGLOT_CLASSIFIER\tdefault: auto")
	fmt.Fprintln(tw, "  POLYGLOT_MIN_CONFIDENCE\tdefault: 0.8")
	fmt.Fprintln(tw, "  POLYGLOT_BASE_URL\tendpoint override (required for custom)")
	fmt.Fprintln(tw, "  POLYGLOT_API_KEY\tkey override for any provider")
	fmt.Fprintln(tw, "  DEBUG_MODE\tsame as --debug")
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "EXAMPLES")
	fmt.Fprintln(tw, "  polyglot \"How are you?\"")
	fmt.Fprintln(tw, "  polyglot -p ollama -m llama3.2 --classifier model")
	fmt.Fprintln(tw, "  polyglot --demo --debug")
	_ = tw.Flush()
}
