// Package mdtransform converts uploaded Markdown documents into styled
// PDF, HTML, and DOCX artifacts by preprocessing the source and driving
// an external Pandoc/XeLaTeX toolchain.
//
// # Quick Start
//
// Create a service rooted at a data directory, upload an archive, and
// convert it:
//
//	svc := mdtransform.NewService("/var/lib/mdtransform", "/var/log/mdtransform")
//
//	up, err := svc.Upload(ctx, "/tmp/doc.zip", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	artifact, err := svc.Convert(ctx, up.Token, mdtransform.FormatPDF,
//	    mdtransform.ConvertParams{Title: "Report"}, nil)
//
// Each upload is scoped by an opaque session token (date-prefixed so the
// retention sweeper can reclaim it). A session owns three sibling
// directories under the data root: {token} for the extracted source,
// {token}_out for rendered artifacts, and {token}_template for the
// generated styling scaffold.
//
// # Conversion Pipeline
//
//  1. Session lookup through the day-scoped ledger (flat file, advisory
//     locks), fronted by a best-effort in-memory cache.
//  2. Template generation (LaTeX preamble or DOCX reference document).
//  3. Markdown preprocessing (blank-line isolation of headings and images,
//     cover/statement/TOC directives, per-image \needspace reservations).
//  4. Engine invocation via an explicit argv CommandRunner; success is
//     judged by artifact existence at the output path.
//
// The Sweeper reclaims expired sessions, ledgers, and rotated log backups
// on a daily schedule, sharing only the filesystem with request handling.
package mdtransform
