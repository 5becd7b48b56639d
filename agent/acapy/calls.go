package acapy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

// errorMessageMaxLength is the maximum length of the response body we will
// include into the generated error message
const errorMessageMaxLength = 80

// StatusError is a non-2xx reply of the agent.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// request is one agent call. Token is the sub-wallet bearer token, empty for
// the admin calls.
type request struct {
	method string
	url    string
	token  string
	in     any
	out    any
}

// SendAndWaitReq is proxy function to route actual call to http or pseudo http
// in tests.
var SendAndWaitReq = sendAndWaitHTTPRequest

func sendAndWaitHTTPRequest(
	ctx context.Context,
	c *http.Client,
	apiKey string,
	r request,
) (err error) {
	defer err2.Handle(&err, "call %s %s", r.method, r.url)

	var body io.Reader
	if r.in != nil {
		body = bytes.NewReader(try.To1(json.Marshal(r.in)))
	}
	req := try.To1(http.NewRequestWithContext(ctx, r.method, r.url, body))
	req.Header.Set("Accept", "application/json")
	if r.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	response := try.To1(c.Do(req))
	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			glog.Warningln("body.Close: ", closeErr)
		}
	}()

	data := try.To1(io.ReadAll(response.Body))
	try.To(checkHTTPStatus(response, data))

	if glog.V(5) {
		glog.Infof("agent reply %s: %s", r.url, data)
	}
	if r.out != nil && len(data) > 0 {
		try.To(json.Unmarshal(data, r.out))
	}
	return nil
}

// checkHTTPStatus checks the status code and gets the server message
func checkHTTPStatus(response *http.Response, data []byte) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}
	glog.Warning("agent http code:", response.Status)
	e := &StatusError{Code: response.StatusCode, Status: response.Status}
	contentType := response.Header.Get("Content-type")
	if strings.HasPrefix(contentType, "text/plain") ||
		strings.HasPrefix(contentType, "application/json") {
		e.Body = string(data[0:min(errorMessageMaxLength, len(data))])
	}
	return e
}
