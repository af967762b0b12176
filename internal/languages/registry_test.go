package languages

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var supported = []string{"English", "Japanese", "Chinese", "German"}

func TestFromTags_LookupEverySupportedTag(t *testing.T) {
	req := require.New(t)

	registry, err := FromTags(supported)
	req.NoError(err)
	req.Equal(len(supported), registry.Len())

	for _, tag := range supported {
		responder, err := registry.Lookup(tag)
		req.NoError(err)
		req.Equal(tag, responder.Tag)
		req.Equal("You can only answer in "+tag, responder.Persona)
		req.Equal("You must only respond in "+tag, responder.Instructions)
	}
}

func TestLookup_UnknownTagIsNotFound(t *testing.T) {
	req := require.New(t)
	registry, err := FromTags(supported)
	req.NoError(err)

	for _, tag := range []string{"French", "english", "", "Chinese "} {
		_, err := registry.Lookup(tag)
		req.ErrorIs(err, ErrNotFound, "tag %q", tag)
	}
}

func TestFromTags_DuplicateTagFailsBeforeUse(t *testing.T) {
	req := require.New(t)

	registry, err := FromTags([]string{"English", "German", "English"})
	req.Nil(registry)
	req.ErrorIs(err, ErrDuplicateLanguage)

	var dup *DuplicateLanguageError
	req.True(errors.As(err, &dup))
	req.Equal("English", dup.Tag)
}

func TestFromTags_CanonicalizesTags(t *testing.T) {
	req := require.New(t)

	registry, err := FromTags([]string{"english", " GERMAN", "mandarin"})
	req.NoError(err)
	req.Equal([]string{"English", "German", "Chinese"}, registry.Tags())

	responder, err := registry.Lookup("English")
	req.NoError(err)
	req.Equal("You can only answer in English", responder.Persona)

	_, err = FromTags([]string{"english", "English"})
	var dup *DuplicateLanguageError
	req.True(errors.As(err, &dup))
	req.Equal("English", dup.Tag)
}

func TestRegister_RejectsEmptyTag(t *testing.T) {
	_, err := NewRegistry().Register("   ", "anything")
	require.Error(t, err)
}

func TestRegister_DefaultsPersona(t *testing.T) {
	req := require.New(t)
	responder, err := NewRegistry().Register(" German ", "")
	req.NoError(err)
	req.Equal("German", responder.Tag)
	req.Equal("You can only answer in German", responder.Persona)
}

func TestTags_KeepsRegistrationOrderAndIsACopy(t *testing.T) {
	req := require.New(t)
	registry, err := FromTags(supported)
	req.NoError(err)

	tags := registry.Tags()
	req.Equal(supported, tags)

	tags[0] = "Klingon"
	req.Equal(supported, registry.Tags())
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	registry, err := FromTags(supported)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := supported[i%len(supported)]
			if _, err := registry.Lookup(tag); err != nil {
				t.Errorf("Lookup(%q) error = %v", tag, err)
			}
			_ = registry.Tags()
		}(i)
	}
	wg.Wait()
}
