package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sagarc03/sitehost/clientcli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		_, ok := clientcli.NewFormatter(true, false).(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		hf, ok := clientcli.NewFormatter(false, true).(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatUpload(t *testing.T) {
	result := &clientcli.UploadResult{
		Name:  "Blog",
		Slug:  "blog",
		URL:   "http://localhost:5000/view/blog",
		Files: []string{"index.html", "app.js"},
		Size:  2000,
	}

	t.Run("normal", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatUpload(&buf, result))
		assert.Contains(t, buf.String(), "Published: blog (2.0 kB, 2 file(s))")
		assert.Contains(t, buf.String(), "URL: http://localhost:5000/view/blog")
	})

	t.Run("quiet prints url only", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatUpload(&buf, result))
		assert.Equal(t, "http://localhost:5000/view/blog\n", buf.String())
	})
}

func TestHumanFormatter_FormatDownload(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.HumanFormatter{}).FormatDownload(&buf, &clientcli.DownloadResult{
		Slug: "blog", LocalPath: "blog.zip", Size: 2048,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Downloaded: blog -> blog.zip (2.0 kB)")

	buf.Reset()
	err = (&clientcli.HumanFormatter{}).FormatDownload(&buf, &clientcli.DownloadResult{Slug: "blog", LocalPath: "-"})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestHumanFormatter_FormatAction(t *testing.T) {
	results := []clientcli.ActionResult{
		{Slug: "blog", OK: true},
		{Slug: "gone", Err: errors.New("not found")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatAction(&buf, "Deleted", results))
	assert.Contains(t, buf.String(), "Deleted: blog")
	assert.Contains(t, buf.String(), "Error: gone - not found")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatAction(&buf, "Deleted", results))
	assert.NotContains(t, buf.String(), "Deleted: blog")
	assert.Contains(t, buf.String(), "Error: gone")
}

func TestHumanFormatter_FormatList(t *testing.T) {
	t.Run("with sites", func(t *testing.T) {
		sites := []clientcli.SiteInfo{
			{Slug: "blog", Status: "active", SizeBytes: 1000, CreatedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)},
			{Slug: "old-docs", Status: "deleted", SizeBytes: 2000, CreatedAt: time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)},
		}

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, sites))

		output := buf.String()
		assert.Contains(t, output, "SLUG")
		assert.Contains(t, output, "blog")
		assert.Contains(t, output, "deleted")
		assert.Contains(t, output, "1.0 kB")
		assert.Contains(t, output, "2 site(s) (3.0 kB total)")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatList(&buf, nil))
		assert.Contains(t, buf.String(), "No sites found")
	})
}

func TestHumanFormatter_FormatUsage(t *testing.T) {
	var buf bytes.Buffer
	err := (&clientcli.HumanFormatter{}).FormatUsage(&buf, &clientcli.UsageResult{TotalSites: 4, TotalStorageFormatted: "1.5 MB"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Active sites: 4")
	assert.Contains(t, buf.String(), "1.5 MB")
}

func TestHumanFormatter_Profiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5000"},
		{Name: "prod", Endpoint: "https://sites.example.com"},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "prod"))
	assert.Contains(t, buf.String(), "* prod")
	assert.Contains(t, buf.String(), "  local")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[1], true))
	assert.Contains(t, buf.String(), "Name:     prod (default)")
	assert.Contains(t, buf.String(), "Endpoint: https://sites.example.com")
}

func TestJSONFormatter(t *testing.T) {
	f := &clientcli.JSONFormatter{}

	t.Run("upload", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatUpload(&buf, &clientcli.UploadResult{Slug: "blog", URL: "/view/blog", Files: []string{"index.html"}}))

		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "blog", got["slug"])
		assert.Equal(t, "/view/blog", got["url"])
	})

	t.Run("action", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatAction(&buf, "Deleted", []clientcli.ActionResult{
			{Slug: "a", OK: true, Message: "Site a deleted"},
			{Slug: "b", Err: errors.New("boom")},
		}))
		assert.JSONEq(t, `{"results":[
			{"slug":"a","ok":true,"message":"Site a deleted"},
			{"slug":"b","ok":false,"error":"boom"}
		]}`, buf.String())
	})

	t.Run("empty list", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatList(&buf, nil))
		assert.JSONEq(t, `{"sites":[]}`, buf.String())
	})

	t.Run("usage", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatUsage(&buf, &clientcli.UsageResult{TotalSites: 1, TotalStorage: 10, TotalStorageFormatted: "10 B"}))
		assert.JSONEq(t, `{"totalSites":1,"totalStorage":10,"totalStorageFormatted":"10 B"}`, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatError(&buf, errors.New("nope")))
		assert.JSONEq(t, `{"error":"nope"}`, buf.String())
	})

	t.Run("profiles", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, f.FormatProfileList(&buf, []clientcli.Profile{{Name: "local", Endpoint: "http://localhost:5000"}}, "local"))
		assert.JSONEq(t, `{"profiles":[{"name":"local","endpoint":"http://localhost:5000","default":true}]}`, buf.String())
	})
}
