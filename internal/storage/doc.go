// Package storage persists the translation snapshot on the local filesystem.
//
// FileStore is a small key-value store backed by a single JSON object file.
// Every operation reads the whole file, mutates the mapping in memory and
// writes the whole file back; there are no partial updates. A missing or
// unparsable file reads as an empty mapping.
//
// TranslationsStorage keeps the last synced translation content under the
// "data" key and its tag metadata under the "tags" key of a FileStore.
package storage
