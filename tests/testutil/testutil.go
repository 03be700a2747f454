// Package testutil provides common test utilities for the PDF service.
package testutil

import (
	"net/http/httptest"

	"github.com/gin-gonic/gin"
)

// TestContext bundles a gin test context with its response recorder
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
}

// ResponseBody returns the raw response body bytes
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// StatusCode returns the recorded response status
func (tc *TestContext) StatusCode() int {
	return tc.Recorder.Code
}
