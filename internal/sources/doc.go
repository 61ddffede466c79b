// Package sources provides interfaces and implementations for retrieving
// translation documents from external data sources.
//
// The package defines the SourceHandler interface which abstracts the
// process of validating source configurations and fetching a translation
// document, and a factory creating the handler matching the configured
// source type.
//
// Architecture:
//   - SourceHandler: Interface for fetching and validating translation data
//   - FetchResult: Translation document with the metadata of the fetch
//   - RowsToDocument: Converts spreadsheet rows into a translation document
//
// Current implementations:
//   - sheetsSourceHandler: Reads a named sheet through the Google Sheets
//     values API, authorized with OAuth2. Transient failures are retried
//     with exponential backoff up to the configured number of tries.
//   - fileSourceHandler: Reads a JSON or YAML translation document from the
//     local filesystem, mainly for development and testing
//   - gitSourceHandler: Clones a repository revision in memory and reads a
//     JSON or YAML translation document committed to it
package sources
