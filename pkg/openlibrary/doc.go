// Package openlibrary provides a client for the OpenLibrary search API.
//
// Client.Search queries the work search endpoint with optional keyword,
// title and author fields. Client.FirstEditionKey resolves the first
// edition key for a known work. All transport failures wrap ErrUnavailable
// so callers can classify catalog outages with errors.Is.
package openlibrary
