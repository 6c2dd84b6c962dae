// Package http provides the HTTP surface of sitehost.
//
// Handler wires a SiteService (or anything satisfying Service) to a chi
// router with the following routes:
//
//	POST /upload                        upload a new site (JSON, base64 files)
//	GET  /view/{slug}/                  site primary address
//	GET  /view?site={slug}              redirect to /view/{slug}/
//	GET  /sites/{slug}/*                static asset mount
//	GET  /admin/sites                   list every site
//	POST /admin/site/{slug}/delete      soft-delete a site
//	POST /admin/site/{slug}/restore     restore a deleted site
//	GET  /admin/usage                   active site count and bytes
//	GET  /admin/site/{slug}/download    zip export
//	GET  /healthz                       liveness and registry ping
//	GET  /metrics                       Prometheus metrics
//
// # Upload
//
// The upload body is JSON:
//
//	{
//	  "siteName": "My Site",
//	  "files": [
//	    {"fileName": "site.zip", "fileData": "UEsDBBQ..."}
//	  ]
//	}
//
// fileData is standard base64 and may carry a data URL prefix such as
// "data:application/zip;base64,". The body size is capped by
// HandlerConfig.MaxUploadSize.
//
// # Errors
//
// JSON endpoints report failures as:
//
//	{"ok": false, "code": "conflict", "error": "A site with this name already exists"}
//
// Status codes:
//   - 400: invalid name, invalid input, forbidden or disallowed content
//   - 404: unknown site (view and asset routes answer with an HTML page)
//   - 409: slug already taken
//   - 413: upload exceeds the body or site size limit
//   - 503: operation timed out, retry after the Retry-After delay
//   - 500: unexpected error, details are only logged
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    MaxUploadSize: 100 << 20,
//	    CORS:          http.CORSConfig{Enabled: true, AllowedOrigins: []string{"*"}},
//	}, service)
//
//	server := &nethttp.Server{Addr: ":5000", Handler: handler.Router()}
package http
