// Package printing turns an assembled document into PDF bytes and stores
// the result.
//
// This package contains:
// - View, the render-ready projection of a document
// - TemplateEngine with embedded quotation, invoice and receipt templates
// - PDFRenderer implementations backed by headless Chrome and gofpdf
// - AssetResolver for logos and signatures embedded as data URLs
// - PDFStorage with a local file system implementation
//
// Example usage:
//
//	engine, _ := NewTemplateEngine(WithTemplatesDir(cfg.TemplatesDir))
//	renderer, _ := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	view, _ := NewView(doc, images)
//	html, _ := engine.Render(ctx, view)
//	result, _ := renderer.Render(ctx, &RenderRequest{HTML: html, View: view, Page: printing.DefaultPageSetup()})
package printing
