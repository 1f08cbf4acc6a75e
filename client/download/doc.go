// Package download streams response bodies fetched through a courier
// client to disk with optional checksum validation and progress reporting.
//
// # Single Download
//
// [File] issues a GET with a streamed response, writes the body to a
// temporary file alongside the destination path, then atomically renames
// it on success:
//
//	err := download.File(ctx, c, "https://example.com/archive.tgz", destPath, nil,
//		download.WithChecksum(sha256.New(), want),
//	)
//
// [Save] does the same for a streamed [client.Response] the caller already
// holds.
package download
