// Package educontent is an education-content backend: courses with image
// galleries, per-course video lessons, a searchable question bank with
// document attachments, and a miscellaneous media feed.
//
// The core of the package is the upload pipeline: incoming files are checked
// against a per-namespace allow-list, given collision-free names, routed to
// a local-filesystem or remote object-storage backend, and bound to their
// owning entity only after every file in the request is confirmed stored.
//
// Construct a Service with functional options:
//
//	svc, err := educontent.New(
//	    educontent.WithRepository(memory.New()),
//	    educontent.WithBlobStore("fs", fsStore),
//	    educontent.WithBlobStore("s3", s3Store),
//	    educontent.WithPolicies(educontent.DefaultPolicies("fs", "s3")...),
//	)
package educontent
