package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const mockBucket = "mock-bucket"

// NewMockForTests returns a Store backed by an in-process fake of the S3 HTTP API. It serves
// HEAD, GET, PUT, DELETE and ListObjectsV2 with pages of pageSize keys (1 when pageSize < 1).
func NewMockForTests(prefix string, pageSize int) *Store {
	if pageSize < 1 {
		pageSize = 1
	}

	rt := &mockRoundTripper{objects: make(map[string][]byte), pageSize: pageSize}

	cfg, _ := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(defaultRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	store, _ := NewWithClient(client, mockBucket, prefix)

	return store
}

type mockRoundTripper struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, "/"+mockBucket), "/")

	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return m.list(req), nil
	}

	switch req.Method {
	case http.MethodHead:
		body, ok := m.objects[key]
		if !ok {
			return response(http.StatusNotFound, nil, nil), nil
		}

		return response(http.StatusOK, nil, objectHeader(body)), nil

	case http.MethodGet:
		body, ok := m.objects[key]
		if !ok {
			return response(http.StatusNotFound, nil, nil), nil
		}

		return response(http.StatusOK, body, objectHeader(body)), nil

	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		if decoded, ok := decodeSingleChunk(body); ok {
			body = decoded
		}

		m.objects[key] = body

		return response(http.StatusOK, nil, http.Header{"Etag": {`"` + etag(body) + `"`}}), nil

	case http.MethodDelete:
		delete(m.objects, key)

		return response(http.StatusNoContent, nil, nil), nil

	default:
		return response(http.StatusNotImplemented, nil, nil), nil
	}
}

// list pages by key order; the continuation token is the last key of the previous page.
func (m *mockRoundTripper) list(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	after := req.URL.Query().Get("continuation-token")

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) && k > after {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	truncated := len(keys) > m.pageSize
	if truncated {
		keys = keys[:m.pageSize]
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult>`)
	b.WriteString("<IsTruncated>" + strconv.FormatBool(truncated) + "</IsTruncated>")
	if truncated {
		b.WriteString("<NextContinuationToken>" + keys[len(keys)-1] + "</NextContinuationToken>")
	}
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(
			"<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;%s&quot;</ETag><LastModified>2024-03-01T22:00:00Z</LastModified></Contents>",
			k, len(m.objects[k]), etag(m.objects[k])))
	}
	b.WriteString("</ListBucketResult>")

	return response(http.StatusOK, []byte(b.String()), http.Header{"Content-Type": {"application/xml"}})
}

func objectHeader(body []byte) http.Header {
	return http.Header{
		"Content-Length": {strconv.Itoa(len(body))},
		"Content-Type":   {"application/octet-stream"},
		"Etag":           {`"` + etag(body) + `"`},
		"Last-Modified":  {time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC).Format(http.TimeFormat)},
	}
}

func response(status int, body []byte, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}

	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewReader(body)),
		Header:        header,
		ContentLength: int64(len(body)),
	}
}

func etag(body []byte) string {
	return fmt.Sprintf("%08x", len(body))
}

// decodeSingleChunk unwraps a one-chunk aws-chunked payload: <hex size>\r\n<body>\r\n0\r\n...
func decodeSingleChunk(b []byte) ([]byte, bool) {
	sizeHex, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return nil, false
	}

	size, err := strconv.ParseInt(string(sizeHex), 16, 64)
	if err != nil || size > int64(len(rest)) {
		return nil, false
	}

	if !bytes.HasPrefix(rest[size:], []byte("\r\n0\r\n")) {
		return nil, false
	}

	return rest[:size], true
}
