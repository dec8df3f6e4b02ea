package postgres

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRow feeds fixed column values into Scan the way the driver would.
type fakeRow struct {
	values []interface{}
	err    error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("expected %d destinations, got %d", len(r.values), len(dest))
	}
	for i, d := range dest {
		if scanner, ok := d.(sql.Scanner); ok {
			if err := scanner.Scan(r.values[i]); err != nil {
				return err
			}
			continue
		}
		target := reflect.ValueOf(d).Elem()
		if r.values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(r.values[i]))
	}
	return nil
}

func TestScanDocument(t *testing.T) {
	published := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	updated := published.Add(time.Hour)
	author := " KONDAX "

	t.Run("Should decode jsonb columns and the category array", func(t *testing.T) {
		row := fakeRow{values: []interface{}{
			"post-1", "blog", "hello",
			[]byte(`[{"_key":"ja","value":"こんにちは"}]`),
			[]byte(`"plain description"`),
			&published, updated, &author,
			[]byte(`{"asset":{"_ref":"image-a-1x1-png"}}`),
			[]byte(`{"ja":[{"_type":"block","children":[{"text":"本文"}]}]}`),
			[]byte(`{tech,design}`),
		}}

		doc, err := scanDocument(row)
		require.NoError(t, err)
		assert.Equal(t, "post-1", doc.ID)
		assert.Equal(t, "こんにちは", doc.Title.Resolve("ja", "ja"))
		assert.Equal(t, "plain description", doc.Description.Resolve("en", "ja"))
		assert.Equal(t, "KONDAX", doc.Author)
		assert.Equal(t, []string{"tech", "design"}, doc.Categories)
		require.NotNil(t, doc.Image)
		assert.Equal(t, "image-a-1x1-png", doc.Image.Asset.Ref)
		assert.Len(t, doc.Body["ja"], 1)
		assert.Equal(t, updated, *doc.UpdatedAt)
	})

	t.Run("Should tolerate null jsonb columns", func(t *testing.T) {
		row := fakeRow{values: []interface{}{
			"news-1", "news", "launch",
			nil, nil, nil, updated, nil, nil, nil,
			[]byte(`{}`),
		}}

		doc, err := scanDocument(row)
		require.NoError(t, err)
		assert.Nil(t, doc.Image)
		assert.Nil(t, doc.PublishedAt)
		assert.Empty(t, doc.Body)
		assert.Empty(t, doc.Categories)
	})

	t.Run("Should report the broken column", func(t *testing.T) {
		row := fakeRow{values: []interface{}{
			"x", "blog", "x",
			[]byte(`{not json`), nil, nil, updated, nil, nil, nil, []byte(`{}`),
		}}

		_, err := scanDocument(row)
		assert.ErrorContains(t, err, "documents.title")
	})
}

func TestDocumentFilter(t *testing.T) {
	where, args := documentFilter("blog", "")
	assert.Equal(t, "doc_type = $1", where)
	assert.Equal(t, []interface{}{"blog"}, args)

	where, args = documentFilter("blog", "tech")
	assert.Equal(t, "doc_type = $1 AND $2 = ANY(categories)", where)
	assert.Equal(t, []interface{}{"blog", "tech"}, args)
}
