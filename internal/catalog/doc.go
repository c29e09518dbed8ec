// Package catalog coordinates the movie list and the add/edit form.
//
// # List
//
// [ListController] keeps the accumulated records of a paginated, searchable
// query. Page 1 replaces the list and later pages append to it. HasMore is true
// when the last page came back full, since the backend reports no total.
//
// Every fetch takes a sequence number. A response whose number is no longer the
// latest is dropped with [shared.ErrStaleResponse], so a slow page never
// overwrites the results of a newer search. [ListController.LoadMore] refuses to
// start while any fetch is in flight.
//
// # Form
//
// [FormController] drives both the create and the edit form. Selected images are
// decoded in the background into a [PendingImage] and Submit waits for the decode
// before sending, so an image picked just before submitting is never lost.
//
// Images never reach the backend. They live in the local [ImageStore] keyed by
// record id: after creation once the server has assigned the id, and for edits as
// soon as decoding finishes.
package catalog
