package custodian

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/findy-network/findy-custodian/cmds"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const pingTimeout = 3 * time.Second

type PingCmd struct {
	BaseAddr string
}

func (c PingCmd) Validate() error {
	if c.BaseAddr == "" {
		return errors.New("server url cannot be empty")
	}
	return nil
}

// Exec checks the health of the server and prints its version info.
func (c PingCmd) Exec(w io.Writer) (r cmds.Result, err error) {
	defer err2.Handle(&err, "ping")

	base := strings.TrimSuffix(c.BaseAddr, "/")
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	try.To1(get(ctx, base+"/healthz"))
	version := try.To1(get(ctx, base+"/version"))
	cmds.Fprintln(w, "ping ok.",
		"\nserver's host address:", base,
		"\nversion info:", version)

	return nil, nil
}

func get(ctx context.Context, url string) (_ string, err error) {
	defer err2.Handle(&err)

	req := try.To1(http.NewRequestWithContext(ctx, http.MethodGet, url, nil))
	resp := try.To1(http.DefaultClient.Do(req))
	defer resp.Body.Close()

	data := try.To1(io.ReadAll(resp.Body))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", url, resp.Status)
	}
	return string(data), nil
}
