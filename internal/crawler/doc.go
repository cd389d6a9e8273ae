// Package crawler collects recipe text from a website into TXT files
// for ingestion.
//
// A crawl is a breadth-first walk over same-host links starting at a seed
// URL. Fragments and query strings are dropped, administrative pages are
// skipped and requests are spaced by a politeness delay. The main text of
// each page is taken from its article or main element, converted to
// Markdown, with the whole body text as a fallback for thin pages.
package crawler
