package storage

import (
	"errors"
	"net/http"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrInfected 表示上传文件未通过病毒扫描。
var ErrInfected = errors.New("malicious file detected")

// missingObjectCodes are S3 error codes meaning the object is already gone.
var missingObjectCodes = map[string]struct{}{
	"NoSuchKey": {},
	"NotFound":  {},
}

// IsNoSuchKey reports whether a minio error means the object does not exist.
// Gateways that drop the structured response are matched by message.
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	var resp minio.ErrorResponse
	if errors.As(err, &resp) {
		if _, ok := missingObjectCodes[resp.Code]; ok {
			return true
		}
		if resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket" {
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "specified key does not exist")
}
