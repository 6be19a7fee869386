// Package persist writes committed layouts to a local cache and a remote
// store.
//
// # Overview
//
// A [Gateway] is called once per completed drag, never per pointer move:
//
//	gw := persist.New(localCache, remoteStore, persist.WithLogger(logger))
//	receipt, err := gw.Save(ctx, "three-columns", "main", v)
//
// Save writes the local cache synchronously and returns; the remote write
// runs on a background goroutine. A failed remote write is logged and
// counted, never retried, and never rolls back the display. After
// [DefaultDegradedAfter] consecutive remote failures [Gateway.Degraded]
// reports true until the next success.
//
// Every save is stamped with a fresh revision id that is stored with the
// record and returned in the [Receipt]. Resize controllers remember it so a
// record that comes back carrying their own revision is recognised as an
// echo however late it arrives.
//
// # Loading
//
// Load asks the remote store first, retrying transient errors, and writes a
// hit through to the local cache. When the remote store fails or has no
// record, the local cache answers. When neither has the record the caller
// falls back to an equal split.
//
// # Shutdown
//
// [Gateway.Wait] blocks until pending remote writes finish; [Gateway.Close]
// waits and then closes both backends.
package persist
