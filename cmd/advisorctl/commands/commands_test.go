package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/hairstory/backend/internal/usecase"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = "../../../data/enhanced_products.json"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--catalog", testCatalog}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func mentionNames(t *testing.T, out string) []string {
	t.Helper()

	var res extractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	names := make([]string, 0, len(res.Products))
	for _, m := range res.Products {
		names = append(names, m.Name)
	}
	return names
}

func TestExtractCommand(t *testing.T) {
	t.Run("text from arguments", func(t *testing.T) {
		out, err := run(t, "", "extract", "I", "recommend", "New Wash Original", "for", "you.")
		require.NoError(t, err)

		names := mentionNames(t, out)
		require.NotEmpty(t, names)
		assert.Equal(t, "New Wash Original", names[0])
	})

	t.Run("text from stdin", func(t *testing.T) {
		out, err := run(t, "Try Hair Balm after washing.", "extract")
		require.NoError(t, err)

		assert.Contains(t, mentionNames(t, out), "Hair Balm")
	})

	t.Run("text from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reply.txt")
		require.NoError(t, os.WriteFile(path, []byte("I recommend Primer before styling."), 0o600))

		out, err := run(t, "", "extract", "--file", path)
		require.NoError(t, err)

		assert.Equal(t, "Primer", mentionNames(t, out)[0])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "extract", "--file", filepath.Join(t.TempDir(), "missing.txt"))

		assert.Error(t, err)
	})
}

func TestExtractCommand_MissingCatalog(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--catalog", "missing.json", "--catalog-fallback", "also-missing.json", "extract", "Hair Balm"})

	err := cmd.Execute()

	assert.ErrorContains(t, err, "load catalog")
}

func TestProductsCommand(t *testing.T) {
	out, err := run(t, "", "products")
	require.NoError(t, err)

	var products []productSummary
	require.NoError(t, json.Unmarshal([]byte(out), &products))
	require.NotEmpty(t, products)

	var names []string
	for _, p := range products {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "New Wash Original")
	assert.Contains(t, names, "Hair Balm")
}

func TestReviewsCommand_RequiresProducts(t *testing.T) {
	_, err := run(t, "", "reviews")

	assert.Error(t, err)
}

func TestLoadConfig_CatalogFlags(t *testing.T) {
	t.Setenv("HAIRSTORY_OPENAI_API_KEY", "test-key")
	t.Setenv("HAIRSTORY_VECTOR_PINECONE_API_KEY", "pc-key")
	t.Setenv("HAIRSTORY_VECTOR_REVIEWS_HOST", "reviews.svc.pinecone.io")

	newCmd := func(opts *rootOptions) *cobra.Command {
		cmd := &cobra.Command{Use: "reviews"}
		cmd.Flags().StringVar(&opts.catalogPath, "catalog", "data/enhanced_products.json", "")
		cmd.Flags().StringVar(&opts.fallbackPath, "catalog-fallback", "data/all_products.json", "")
		return cmd
	}

	t.Run("fallback flag overrides config", func(t *testing.T) {
		opts := &rootOptions{}
		cmd := newCmd(opts)
		require.NoError(t, cmd.ParseFlags([]string{"--catalog-fallback", "backup.json"}))

		cfg, err := loadConfig(cmd, opts)
		require.NoError(t, err)

		assert.Equal(t, "backup.json", cfg.Catalog.FallbackPath)
		assert.Equal(t, "data/enhanced_products.json", cfg.Catalog.Path)
	})

	t.Run("both catalog flags", func(t *testing.T) {
		opts := &rootOptions{verbose: true}
		cmd := newCmd(opts)
		require.NoError(t, cmd.ParseFlags([]string{"--catalog", "main.json", "--catalog-fallback", "backup.json"}))

		cfg, err := loadConfig(cmd, opts)
		require.NoError(t, err)

		assert.Equal(t, "main.json", cfg.Catalog.Path)
		assert.Equal(t, "backup.json", cfg.Catalog.FallbackPath)
		assert.True(t, cfg.Matching.EnableDebugLogging)
	})

	t.Run("unchanged flags keep config values", func(t *testing.T) {
		t.Setenv("HAIRSTORY_CATALOG_FALLBACK_PATH", "env-backup.json")
		opts := &rootOptions{}
		cmd := newCmd(opts)
		require.NoError(t, cmd.ParseFlags(nil))

		cfg, err := loadConfig(cmd, opts)
		require.NoError(t, err)

		assert.Equal(t, "env-backup.json", cfg.Catalog.FallbackPath)
	})
}

// stubCompleter answers profile extraction, follow-up and recommendation prompts
type stubCompleter struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *stubCompleter) Complete(ctx context.Context, messages []domain.Message, opts domain.CompletionOptions) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++

	if c.fail {
		return "", domain.ErrCompletion
	}

	prompt := messages[0].Content
	switch {
	case messages[0].Role == domain.RoleSystem:
		return "I recommend New Wash Rich for your curly hair. Pair it with Hair Balm.", nil
	case strings.Contains(prompt, "hair profile extraction assistant"):
		if strings.Contains(prompt, "User: It is long and my scalp gets oily") {
			return `{"hair_type": "curly", "hair_length": "long", "scalp_condition": "oily"}`, nil
		}
		return `{"hair_type": "curly"}`, nil
	default:
		return "How long is your hair?", nil
	}
}

func newStubChat(t *testing.T, completer domain.ChatCompleter) *usecase.ChatService {
	t.Helper()

	cat, err := catalog.Load(testCatalog)
	require.NoError(t, err)

	return usecase.NewChatService(usecase.ChatDeps{
		Completer: completer,
		Catalog:   cat,
		Extractor: usecase.NewMentionExtractor(cat, usecase.MentionConfig{}),
	}, usecase.ChatConfig{})
}

func TestRunChat(t *testing.T) {
	t.Run("asks until the profile is complete then quits", func(t *testing.T) {
		var out bytes.Buffer
		in := strings.NewReader("I have curly hair\n\nIt is long and my scalp gets oily\nquit\nnever read\n")

		err := runChat(context.Background(), in, &out, newStubChat(t, &stubCompleter{}))
		require.NoError(t, err)

		got := out.String()
		assert.True(t, strings.HasPrefix(got, "Welcome to the Hairstory Haircare Assistant!"))
		assert.Contains(t, got, openingQuestion)
		assert.Equal(t, 2, strings.Count(got, "How long is your hair?"))
		assert.Equal(t, 1, strings.Count(got, "Your hair profile is complete."))
		assert.Contains(t, got, "HAIR PROFILE:\n  Hair length: long\n  Hair type: curly\n  Scalp condition: oily\n")
		assert.True(t, strings.HasSuffix(got, chatGoodbye+"\n"))
		assert.Less(t, strings.Index(got, "How long is your hair?"), strings.Index(got, "Your hair profile is complete."))
	})

	t.Run("recommendation prints the profile", func(t *testing.T) {
		var out bytes.Buffer
		in := strings.NewReader("I have curly hair, please recommend a routine\nbye\n")

		err := runChat(context.Background(), in, &out, newStubChat(t, &stubCompleter{}))
		require.NoError(t, err)

		got := out.String()
		assert.Contains(t, got, "I recommend New Wash Rich for your curly hair.")
		assert.Contains(t, got, "HAIR PROFILE:\n  Hair type: curly\n")
		assert.NotContains(t, got, "Your hair profile is complete.")
	})

	t.Run("exit words ignore case", func(t *testing.T) {
		var out bytes.Buffer
		completer := &stubCompleter{}

		err := runChat(context.Background(), strings.NewReader("  EXIT \n"), &out, newStubChat(t, completer))
		require.NoError(t, err)

		assert.Contains(t, out.String(), chatGoodbye)
		assert.Zero(t, completer.calls)
	})

	t.Run("end of input ends the session", func(t *testing.T) {
		var out bytes.Buffer

		err := runChat(context.Background(), strings.NewReader("I have curly hair"), &out, newStubChat(t, &stubCompleter{}))
		require.NoError(t, err)

		assert.Contains(t, out.String(), "How long is your hair?")
		assert.NotContains(t, out.String(), chatGoodbye)
	})

	t.Run("failed turn keeps the session going", func(t *testing.T) {
		var out bytes.Buffer

		err := runChat(context.Background(), strings.NewReader("recommend something\nbye\n"), &out, newStubChat(t, &stubCompleter{fail: true}))
		require.NoError(t, err)

		assert.Contains(t, out.String(), chatErrorReply)
		assert.Contains(t, out.String(), chatGoodbye)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty closed") }

func TestRunChat_ReadError(t *testing.T) {
	err := runChat(context.Background(), failingReader{}, &bytes.Buffer{}, newStubChat(t, &stubCompleter{}))

	assert.EqualError(t, err, "tty closed")
}
