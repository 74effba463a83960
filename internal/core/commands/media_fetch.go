// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package commands contains the concrete cor.Command implementations used by
// the media workflows. This file holds the HTTP fetch helper shared by every
// upstream media tier.
package commands

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-workout-content/internal/cloud"
	"github.com/jaycherian/gcp-go-workout-content/internal/core/model"
)

// Header values that several media hosts require before they serve bytes.
const (
	BrowserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	BrowserAccept    = "image/avif,image/webp,image/apng,image/gif,video/mp4,image/*,*/*;q=0.8"
)

// OctetStream is the content type used when neither the upstream nor the sniffer knows better.
const OctetStream = "application/octet-stream"

// sniffLength is the number of leading bytes handed to filetype.Match.
const sniffLength = 262

// readCloser pairs a (possibly buffered) reader with the closer of its source.
type readCloser struct {
	io.Reader
	io.Closer
}

// cancelOnClose releases the per-tier timeout once the caller is done with the body.
type cancelOnClose struct {
	io.Reader
	closer io.Closer
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.closer.Close()
}

// fetchMedia performs a GET against rawURL and returns the body as a
// MediaStream. Non-2xx answers and transport failures become
// *model.UpstreamError; their bodies are closed before returning. The
// returned stream owns the timeout and releases it on Close.
func fetchMedia(ctx context.Context, client cloud.HTTPDoer, source string, rawURL string, header http.Header, timeout time.Duration) (*model.MediaStream, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, &model.UpstreamError{Source: source, Err: model.ErrMalformedURL}
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, &model.UpstreamError{Source: source, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		return nil, &model.UpstreamError{Source: source, StatusCode: resp.StatusCode}
	}

	reader, contentType := sniffContentType(resp.Body, resp.Header.Get("Content-Type"))
	return &model.MediaStream{
		Body:          &cancelOnClose{Reader: reader, closer: resp.Body, cancel: cancel},
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		Tier:          source,
	}, nil
}

// sniffContentType keeps a declared content type unless it is missing or
// generic, in which case the leading bytes decide. The returned reader still
// yields every byte of body.
func sniffContentType(body io.Reader, declared string) (io.Reader, string) {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(strings.ToLower(declared), OctetStream) {
		return body, declared
	}

	buffered := bufio.NewReaderSize(body, sniffLength)
	head, _ := buffered.Peek(sniffLength)
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return buffered, OctetStream
	}
	return buffered, kind.MIME.Value
}

// browserHeaders returns the header set used for hosts that reject default client headers.
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", BrowserUserAgent)
	h.Set("Accept", BrowserAccept)
	return h
}
