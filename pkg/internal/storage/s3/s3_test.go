package s3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitEndpoint(t *testing.T) {
	cases := []struct {
		in     string
		ssl    bool
		host   string
		secure bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"localhost:9000", true, "localhost:9000", true},
		{"https://s3.example.org", false, "s3.example.org", true},
		{"http://minio:9000", false, "minio:9000", false},
		{"http://minio:9000", true, "minio:9000", true},
	}

	for _, tc := range cases {
		host, secure := splitEndpoint(tc.in, tc.ssl)
		assert.Equal(t, tc.host, host, tc.in)
		assert.Equal(t, tc.secure, secure, tc.in)
	}
}
