// Package loaders provides the loader registry and MIME detection.
// Each loader knows how to extract page text from a specific MIME type;
// loaders never chunk or index.
//
// Loaders are registered with the Registry at startup.
package loaders
