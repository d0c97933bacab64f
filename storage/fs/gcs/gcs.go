// Copyright 2022 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs serves session files from a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Bucket is an fs.FS over the objects directly under a prefix of a
// bucket.
type Bucket struct {
	bucket *storage.BucketHandle
	prefix string
}

// NewBucket returns a Bucket for the objects of bucket whose names
// start with prefix. A non-empty prefix names a "directory" and should
// end in "/".
func NewBucket(client *storage.Client, bucket, prefix string) *Bucket {
	return &Bucket{bucket: client.Bucket(bucket), prefix: prefix}
}

// NewClient returns a read-only storage client using Application
// Default Credentials, or no credentials at all if anonymous is set.
func NewClient(ctx context.Context, anonymous bool) (*storage.Client, error) {
	if anonymous {
		return storage.NewClient(ctx, option.WithoutAuthentication())
	}
	ts, err := google.DefaultTokenSource(ctx, storage.ScopeReadOnly)
	if err != nil {
		return nil, fmt.Errorf("gcs credentials: %w", err)
	}
	return storage.NewClient(ctx, option.WithTokenSource(ts))
}

// ParseURL splits a URL of the form gs://bucket/prefix into its bucket
// and prefix. The prefix, if any, is returned with a trailing "/".
func ParseURL(u string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(u, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%q is not a gs:// URL", u)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q names no bucket", u)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}

// List implements fs.FS.List. Objects in nested "directories" are not
// listed.
func (b *Bucket) List(ctx context.Context) ([]string, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: b.prefix, Delimiter: "/"})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if attrs.Name == "" {
			// A synthetic directory entry.
			continue
		}
		names = append(names, strings.TrimPrefix(attrs.Name, b.prefix))
	}
	sort.Strings(names)
	return names, nil
}

// Open implements fs.FS.Open.
func (b *Bucket) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return b.bucket.Object(b.prefix + name).NewReader(ctx)
}
