package docs

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// title returns the text of the first level 1 heading.
func title(md string) string {
	src := []byte(md)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return string(h.Text(src))
		}
	}
	return ""
}

func TestIndexListsEveryTopic(t *testing.T) {
	index, err := Topic(Index)
	require.NoError(t, err)

	var listed []string
	for _, m := range regexp.MustCompile("`ftr topic ([a-z]+)`").FindAllStringSubmatch(index, -1) {
		listed = append(listed, m[1])
	}
	assert.ElementsMatch(t, All(), listed)
}

func TestTopicsHaveATitle(t *testing.T) {
	for _, name := range append(All(), Index) {
		t.Run(name, func(t *testing.T) {
			md, err := Topic(name)
			require.NoError(t, err)
			assert.NotEmpty(t, title(md))
		})
	}
}

func TestTopics(t *testing.T) {
	md, err := Topics("Ledger")
	require.NoError(t, err)
	assert.Equal(t, "Ledger", title(md))

	all, err := Topics("*")
	require.NoError(t, err)
	for _, name := range All() {
		one, err := Topic(name)
		require.NoError(t, err)
		assert.Contains(t, all, one)
	}

	_, err = Topics("ledger", "nope")
	assert.Error(t, err)
}
