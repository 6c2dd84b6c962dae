package sitehost_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/sagarc03/sitehost"
	"github.com/sagarc03/sitehost/database/sqlite"
	"github.com/sagarc03/sitehost/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHost struct {
	service *sitehost.SiteService
	repo    sitehost.SiteRepo
	dir     string
}

func newTestHost(t *testing.T, cfg sitehost.ServiceConfig) testHost {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Connect(ctx, ":memory:", sitehost.Tables{Sites: "sites"})
	require.NoError(t, err, "connect sqlite")
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx), "migrate")

	dir := t.TempDir()
	root, err := os.OpenRoot(dir)
	require.NoError(t, err, "open root")
	t.Cleanup(func() { _ = root.Close() })

	storage, err := filesystem.NewFileStorage(root)
	require.NoError(t, err, "new file storage")

	service, err := sitehost.NewSiteService(db.GetRepo(), storage, cfg)
	require.NoError(t, err, "new site service")

	return testHost{service: service, repo: db.GetRepo(), dir: dir}
}

func (h testHost) activeDir(slug string) string {
	return filepath.Join(h.dir, string(sitehost.LocationActive), slug)
}

func (h testHost) deletedDir(slug string) string {
	return filepath.Join(h.dir, string(sitehost.LocationDeleted), slug)
}

func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, n := range names {
		w, err := zw.Create(n)
		require.NoError(t, err)
		_, err = w.Write([]byte(files[n]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readAll(t *testing.T, r io.ReadCloser) string {
	t.Helper()
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestIntegration_UploadAndView(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{StrictAssets: true})
	ctx := context.Background()

	archive := zipBytes(t, map[string]string{
		"index.html":   "<h1>home</h1>",
		"css/site.css": "body{}",
		"js/app.js":    "console.log(1)",
	})

	result, err := h.service.Upload(ctx, "Landing Page", []sitehost.UploadFile{{Name: "site.zip", Data: archive}})
	require.NoError(t, err)
	assert.Equal(t, "landing-page", result.Slug)

	view, err := h.service.View(ctx, "landing-page")
	require.NoError(t, err)
	require.False(t, view.IsListing())
	assert.Equal(t, "index.html", view.Name)
	assert.Equal(t, "<h1>home</h1>", readAll(t, view.Content))

	asset, err := h.service.OpenAsset(ctx, "landing-page", "css/site.css")
	require.NoError(t, err)
	assert.Equal(t, int64(6), asset.Size)
	assert.Equal(t, "body{}", readAll(t, asset.Content))

	site, err := h.repo.Get(ctx, "landing-page")
	require.NoError(t, err)
	assert.Equal(t, "Landing Page", site.Name)
	assert.Equal(t, int64(len("<h1>home</h1>")+len("body{}")+len("console.log(1)")), site.SizeBytes)

	usage, err := h.service.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), usage.TotalSites)
	assert.Equal(t, site.SizeBytes, usage.TotalStorage)
}

func TestIntegration_Conflict(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{})
	ctx := context.Background()
	page := []sitehost.UploadFile{{Name: "index.html", Data: []byte("one")}}

	_, err := h.service.Upload(ctx, "Blog", page)
	require.NoError(t, err)

	_, err = h.service.Upload(ctx, "blog", []sitehost.UploadFile{{Name: "index.html", Data: []byte("two")}})
	assert.ErrorIs(t, err, sitehost.ErrConflict)

	view, err := h.service.View(ctx, "blog")
	require.NoError(t, err)
	assert.Equal(t, "one", readAll(t, view.Content), "existing site must be untouched")

	require.NoError(t, h.service.Delete(ctx, "blog"))
	_, err = h.service.Upload(ctx, "Blog", page)
	assert.ErrorIs(t, err, sitehost.ErrConflict, "deleted sites keep their slug")
}

func TestIntegration_ForbiddenContentLeavesNothing(t *testing.T) {
	tests := []struct {
		name  string
		files []sitehost.UploadFile
		want  error
	}{
		{
			name: "nested php in archive",
			files: []sitehost.UploadFile{{Name: "site.zip", Data: zipBytes(t, map[string]string{
				"index.html":               "ok",
				"assets/deep/er/shell.php": "<?php",
			})}},
			want: sitehost.ErrForbiddenContent,
		},
		{
			name: "top-level script next to a page",
			files: []sitehost.UploadFile{
				{Name: "index.html", Data: []byte("ok")},
				{Name: "deploy.sh", Data: []byte("rm -rf /")},
			},
			want: sitehost.ErrForbiddenContent,
		},
		{
			name: "zip slip",
			files: []sitehost.UploadFile{{Name: "site.zip", Data: zipBytes(t, map[string]string{
				"../../escape.html": "x",
			})}},
			want: sitehost.ErrForbiddenContent,
		},
		{
			name:  "unknown extension",
			files: []sitehost.UploadFile{{Name: "notes.md", Data: []byte("# hi")}},
			want:  sitehost.ErrNotAllowed,
		},
		{
			name:  "corrupt archive",
			files: []sitehost.UploadFile{{Name: "site.zip", Data: []byte("not a zip")}},
			want:  sitehost.ErrNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, sitehost.ServiceConfig{})
			ctx := context.Background()

			_, err := h.service.Upload(ctx, "Evil", tt.files)
			require.ErrorIs(t, err, tt.want)

			_, statErr := os.Stat(h.activeDir("evil"))
			assert.True(t, os.IsNotExist(statErr), "site directory must be rolled back")

			_, err = h.repo.Get(ctx, "evil")
			assert.ErrorIs(t, err, sitehost.ErrNotFound, "no row may be written")

			_, statErr = os.Stat(filepath.Join(h.dir, "escape.html"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestIntegration_SizeLimit(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{MaxSiteBytes: 16})
	ctx := context.Background()

	archive := zipBytes(t, map[string]string{
		"index.html": "0123456789",
		"big.txt":    "0123456789",
	})

	_, err := h.service.Upload(ctx, "Big", []sitehost.UploadFile{{Name: "site.zip", Data: archive}})
	require.ErrorIs(t, err, sitehost.ErrTooLarge)

	_, statErr := os.Stat(h.activeDir("big"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIntegration_DeleteRestore(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{StrictAssets: true})
	ctx := context.Background()

	_, err := h.service.Upload(ctx, "Docs", []sitehost.UploadFile{{Name: "index.html", Data: []byte("docs")}})
	require.NoError(t, err)

	before, err := h.repo.Get(ctx, "docs")
	require.NoError(t, err)

	require.NoError(t, h.service.Delete(ctx, "docs"))

	_, err = os.Stat(h.activeDir("docs"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(h.deletedDir("docs"))
	assert.NoError(t, err)

	_, err = h.service.View(ctx, "docs")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)
	_, err = h.service.OpenAsset(ctx, "docs", "index.html")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)

	usage, err := h.service.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), usage.TotalSites)

	require.NoError(t, h.service.Delete(ctx, "docs"), "second delete is a no-op")

	require.NoError(t, h.service.Restore(ctx, "docs"))

	view, err := h.service.View(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", readAll(t, view.Content))

	site, err := h.repo.Get(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, sitehost.StatusActive, site.Status)
	assert.Equal(t, before.SizeBytes, site.SizeBytes)
}

func TestIntegration_ExportRoundTrip(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{})
	ctx := context.Background()

	content := map[string]string{
		"index.html":         "<p>hi</p>",
		"img/logo.svg":       "<svg/>",
		"data/nested/a.json": `{"a":1}`,
	}

	_, err := h.service.Upload(ctx, "Portfolio", []sitehost.UploadFile{{Name: "p.zip", Data: zipBytes(t, content)}})
	require.NoError(t, err)

	require.NoError(t, h.service.Delete(ctx, "portfolio"))

	export, err := h.service.Export(ctx, "portfolio")
	require.NoError(t, err, "deleted sites are exportable")
	assert.Equal(t, "portfolio.zip", export.Filename)
	assert.Equal(t, sitehost.StatusDeleted, export.Site.Status)

	zr, err := zip.NewReader(bytes.NewReader(export.Data), int64(len(export.Data)))
	require.NoError(t, err)

	got := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		got[f.Name] = readAll(t, rc)
	}
	assert.Equal(t, content, got)

	_, err = h.service.Upload(ctx, "Portfolio Copy", []sitehost.UploadFile{{Name: export.Filename, Data: export.Data}})
	require.NoError(t, err, "exports are valid uploads")
}

func TestIntegration_NotFound(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{StrictAssets: true})
	ctx := context.Background()

	_, err := h.service.View(ctx, "nothing-here")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)

	_, err = h.service.Export(ctx, "nothing-here")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)

	assert.ErrorIs(t, h.service.Delete(ctx, "nothing-here"), sitehost.ErrNotFound)
	assert.ErrorIs(t, h.service.Restore(ctx, "../../etc"), sitehost.ErrNotFound)

	_, err = h.service.Upload(ctx, "Vanishing", []sitehost.UploadFile{{Name: "index.html", Data: []byte("x")}})
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(h.activeDir("vanishing")))

	_, err = h.service.View(ctx, "vanishing")
	assert.ErrorIs(t, err, sitehost.ErrNotFound)
	assert.ErrorIs(t, h.service.Delete(ctx, "vanishing"), sitehost.ErrNotFound)

	site, err := h.repo.Get(ctx, "vanishing")
	require.NoError(t, err)
	assert.Equal(t, sitehost.StatusActive, site.Status, "failed delete leaves the row alone")
}

func TestIntegration_ViewFallbacks(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{})
	ctx := context.Background()

	_, err := h.service.Upload(ctx, "Single", []sitehost.UploadFile{{Name: "readme.txt", Data: []byte("just me")}})
	require.NoError(t, err)

	view, err := h.service.View(ctx, "single")
	require.NoError(t, err)
	require.False(t, view.IsListing())
	assert.Equal(t, "readme.txt", view.Name)
	assert.Equal(t, "just me", readAll(t, view.Content))

	_, err = h.service.Upload(ctx, "Many", []sitehost.UploadFile{
		{Name: "a.txt", Data: []byte("aa")},
		{Name: "b.json", Data: []byte("{}")},
		{Name: "assets.zip", Data: zipBytes(t, map[string]string{"img/x.png": "png"})},
	})
	require.NoError(t, err)

	view, err = h.service.View(ctx, "many")
	require.NoError(t, err)
	require.True(t, view.IsListing())
	assert.Equal(t, []sitehost.ListingEntry{
		{Name: "a.txt", Size: 2},
		{Name: "b.json", Size: 2},
		{Name: "img", IsDir: true},
	}, view.Entries)
}

func TestIntegration_CheckAndPrune(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{})
	ctx := context.Background()

	_, err := h.service.Upload(ctx, "Kept", []sitehost.UploadFile{{Name: "index.html", Data: []byte("k")}})
	require.NoError(t, err)

	problems, err := h.service.Check(ctx)
	require.NoError(t, err)
	assert.Empty(t, problems)

	require.NoError(t, os.MkdirAll(h.activeDir("stray"), 0o755))

	problems, err = h.service.Check(ctx)
	require.NoError(t, err)
	assert.Equal(t, []sitehost.Inconsistency{
		{Slug: "stray", Location: sitehost.LocationActive, Problem: sitehost.ProblemOrphanDirectory},
	}, problems)

	assert.ErrorIs(t, h.service.PruneOrphan(ctx, "kept"), sitehost.ErrConflict)
	require.NoError(t, h.service.PruneOrphan(ctx, "stray"))

	_, err = os.Stat(h.activeDir("stray"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(h.activeDir("kept"))
	assert.NoError(t, err)
}

func TestIntegration_AssetNamesMatchIngest(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{StrictAssets: true})
	ctx := context.Background()

	content := map[string]string{
		"index.html":               "<h1>app</h1>",
		"css/main~v2.css":          "body{}",
		"img/logo#1.png":           "png",
		"js/vendors~main.chunk.js": "var x;",
		"fonts/my font.txt":        "font",
		"data/a..b.json":           "{}",
	}

	_, err := h.service.Upload(ctx, "Build", []sitehost.UploadFile{{Name: "build.zip", Data: zipBytes(t, content)}})
	require.NoError(t, err)

	export, err := h.service.Export(ctx, "build")
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(export.Data), int64(len(export.Data)))
	require.NoError(t, err)

	for _, f := range zr.File {
		asset, err := h.service.OpenAsset(ctx, "build", f.Name)
		require.NoError(t, err, "every stored file is servable: %s", f.Name)
		assert.Equal(t, content[f.Name], readAll(t, asset.Content))
	}
	assert.Len(t, zr.File, len(content))
}

func TestIntegration_ConflictingPaths(t *testing.T) {
	tests := []struct {
		name  string
		files []sitehost.UploadFile
	}{
		{
			name: "file then directory in one archive",
			files: []sitehost.UploadFile{{Name: "site.zip", Data: zipBytes(t, map[string]string{
				"a":        "",
				"a/b.html": "<p>b</p>",
			})}},
		},
		{
			name: "top-level file then archive directory",
			files: []sitehost.UploadFile{
				{Name: "page.html", Data: []byte("<p>page</p>")},
				{Name: "site.zip", Data: zipBytes(t, map[string]string{"page.html/style.css": "x"})},
			},
		},
		{
			name: "archive directory then top-level file",
			files: []sitehost.UploadFile{
				{Name: "site.zip", Data: zipBytes(t, map[string]string{"page.html/index.html": "x"})},
				{Name: "page.html", Data: []byte("<p>page</p>")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, sitehost.ServiceConfig{})
			ctx := context.Background()

			_, err := h.service.Upload(ctx, "Collide", tt.files)
			require.ErrorIs(t, err, sitehost.ErrNotAllowed)
			assert.NotErrorIs(t, err, sitehost.ErrInternal)

			_, statErr := os.Stat(h.activeDir("collide"))
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestIntegration_NestedArchiveDenyList(t *testing.T) {
	h := newTestHost(t, sitehost.ServiceConfig{})
	ctx := context.Background()

	inner := zipBytes(t, map[string]string{"shell.php": "<?php"})
	outer := zipBytes(t, map[string]string{"index.html": "ok", "vendor/inner.zip": string(inner)})

	_, err := h.service.Upload(ctx, "Nested", []sitehost.UploadFile{{Name: "site.zip", Data: outer}})
	require.ErrorIs(t, err, sitehost.ErrForbiddenContent)

	_, statErr := os.Stat(h.activeDir("nested"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = h.service.Upload(ctx, "Top Nested", []sitehost.UploadFile{
		{Name: "index.html", Data: []byte("ok")},
		{Name: "inner.zip", Data: zipBytes(t, map[string]string{"pack.zip": string(inner)})},
	})
	assert.ErrorIs(t, err, sitehost.ErrForbiddenContent)
}
