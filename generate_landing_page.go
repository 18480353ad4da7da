package ocrtool

import (
	"html"
	"strings"
)

// GenerateLandingPage will generate a simple landing page listing the
// endpoints and the page segmentation modes.
func GenerateLandingPage() string {

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>ocr-tool</title>` +
		`<style>html, body{font-family: Fixedsys,Courier,monospace;} body{max-width: 960px; margin: 0 auto;}` +
		`section{margin: 3em 1.5em 0 1.5em;} pre{padding: 0;}</style></head><body>` +
		`<section><h2>ocr-tool &gt;</h2><p>Status: RUNNING</p><ul>` +
		`<li>POST /ocr &mdash; JSON request {img_url|img_base64, engine, engine_args{psm,lang}, crop{top,left,right,bottom}, binarize, output_format}</li>` +
		`<li>POST /ocr-file-upload &mdash; multipart with optional JSON part and an image part</li>` +
		`<li>GET /metrics &mdash; prometheus metrics</li></ul>`)
	sb.WriteString("<pre>")
	sb.WriteString(html.EscapeString(PageSegModeHelp()))
	sb.WriteString("</pre></section></body></html>")
	return sb.String()

}
