package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/script-engine/pkg/types"
)

func TestWriteOutput(t *testing.T) {
	rt := types.ReadingTime{Minutes: 1, WordCount: 130, Formatted: "1:00"}
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "plain\n")
		return err
	}

	tests := []struct {
		format string
		want   string
	}{
		{"text", "plain\n"},
		{"", "plain\n"},
		{"json", "\"formatted\": \"1:00\""},
		{"YAML", "word_count: 130"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, writeOutput(&buf, tt.format, rt, text))
			assert.Contains(t, buf.String(), tt.want)
		})
	}

	assert.Error(t, writeOutput(io.Discard, "csv", rt, text))
}

func newProfileCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addProfileFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestProfileFromFlags(t *testing.T) {
	p, err := profileFromFlags(newProfileCmd(t))
	require.NoError(t, err)
	assert.Nil(t, p)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channel_name: ScienceTV\ntone: enjoué\ncustom_options:\n  rubrique: Le saviez-vous\n"), 0o644))

	p, err = profileFromFlags(newProfileCmd(t, "--profile", path, "--author", "Alice", "--tone", "sérieux"))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "ScienceTV", p.ChannelName)
	assert.Equal(t, "Alice", p.AuthorName)
	assert.Equal(t, "sérieux", p.Tone)
	assert.Equal(t, "Le saviez-vous", p.Custom["rubrique"])

	_, err = profileFromFlags(newProfileCmd(t, "--profile", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}

func TestInputText(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("file", "", "")

	got, err := inputText(cmd, []string{"voir", "https://example.org"})
	require.NoError(t, err)
	assert.Equal(t, "voir https://example.org", got)

	cmd.SetIn(strings.NewReader("depuis stdin"))
	got, err = inputText(cmd, []string{"-"})
	require.NoError(t, err)
	assert.Equal(t, "depuis stdin", got)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("depuis un fichier"), 0o644))
	require.NoError(t, cmd.Flags().Set("file", path))
	got, err = inputText(cmd, nil)
	require.NoError(t, err)
	assert.Equal(t, "depuis un fichier", got)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Titre", firstLine("  Titre\nsuite"))
	assert.Equal(t, 80, len([]rune(firstLine(strings.Repeat("é", 100)))))
}
