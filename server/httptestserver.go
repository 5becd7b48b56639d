package server

import (
	"net/http/httptest"

	"github.com/findy-network/findy-custodian/agent/custodian"
	"github.com/findy-network/findy-custodian/agent/utils"
)

// StartTestHTTPServer starts the routes of the custodian in a httptest.Server
// and sets its URL as the host address. The caller closes the server.
func StartTestHTTPServer(cust *custodian.Custodian, cfg Config) *httptest.Server {
	srv := httptest.NewServer(NewServer(cust, cfg).Handler())
	utils.Settings.SetHostAddr(srv.URL)
	return srv
}
