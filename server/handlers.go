package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/findy-network/findy-custodian/agent/custodian"
	"github.com/findy-network/findy-custodian/agent/ssi"
	"github.com/findy-network/findy-custodian/core"
	"github.com/go-chi/chi/v5"
	"github.com/xeipuuv/gojsonschema"
)

type walletCreateRequest struct {
	BPN  string `json:"bpn"`
	Name string `json:"name"`
}

type signRequest struct {
	Message string `json:"message"`
}

// readBody reads the body and checks it against the schema when one is
// given. The body is decoded to v.
func readBody(r *http.Request, op string, schema *gojsonschema.Schema, what string, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return core.SyntaxErr(op, "%s is missing", what)
	}
	if schema != nil {
		if err = validate(op, schema, data, what); err != nil {
			return err
		}
	}
	if err = json.Unmarshal(data, v); err != nil {
		return core.SyntaxErr(op, "%s is not valid: %v", what, err)
	}
	return nil
}

func boolQuery(r *http.Request, op, name string) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, core.SyntaxErr(op, "query parameter %s must be a boolean", name)
	}
	return b, nil
}

func (s *Server) handleGetWallets(w http.ResponseWriter, r *http.Request) {
	l, err := s.cust.Wallets.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req walletCreateRequest
	if err := readBody(r, "create wallet", nil, "wallet", &req); err != nil {
		writeError(w, r, err)
		return
	}
	wallet, err := s.cust.Wallets.Create(r.Context(), req.BPN, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wallet.Public(false))
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	withCredentials, err := boolQuery(r, "get wallet", "withCredentials")
	if err != nil {
		writeError(w, r, err)
		return
	}
	v, err := s.cust.Wallets.Get(r.Context(), chi.URLParam(r, "identifier"), withCredentials)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleDeleteWallet(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	ok, err := s.cust.Wallets.Delete(r.Context(), identifier)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeMessage(w, http.StatusBadRequest, "Delete wallet "+identifier+" has failed!")
		return
	}
	writeMessage(w, http.StatusAccepted, "Wallet successfully removed!")
}

func (s *Server) handleStoreCredential(w http.ResponseWriter, r *http.Request) {
	var vc ssi.VerifiableCredential
	if err := readBody(r, "store credential", credentialSchema, "verifiable credential", &vc); err != nil {
		writeError(w, r, err)
		return
	}
	msg, err := s.cust.Credentials.Store(r.Context(), chi.URLParam(r, "identifier"), vc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusCreated, msg)
}

func (s *Server) handleSign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if err := readBody(r, "sign message", nil, "message", &req); err != nil {
		writeError(w, r, err)
		return
	}
	sm, err := s.cust.Signer.Sign(r.Context(), chi.URLParam(r, "identifier"), req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sm)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	doc, err := s.cust.Services.Resolve(r.Context(), chi.URLParam(r, "identifier"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleAddService(w http.ResponseWriter, r *http.Request) {
	var entry ssi.ServiceEntry
	if err := readBody(r, "add service", nil, "service", &entry); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := s.cust.Services.Add(r.Context(), chi.URLParam(r, "identifier"), entry)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var patch ssi.ServicePatch
	if err := readBody(r, "update service", nil, "service", &patch); err != nil {
		writeError(w, r, err)
		return
	}
	doc, err := s.cust.Services.Update(r.Context(),
		chi.URLParam(r, "identifier"), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRemoveService(w http.ResponseWriter, r *http.Request) {
	err := s.cust.Services.Remove(r.Context(),
		chi.URLParam(r, "identifier"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleIssueCredential(w http.ResponseWriter, r *http.Request) {
	var req custodian.IssueRequest
	if err := readBody(r, "issue credential", issueRequestSchema, "credential request", &req); err != nil {
		writeError(w, r, err)
		return
	}
	vc, err := s.cust.Credentials.Issue(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vc)
}

func (s *Server) handleVerifyCredential(w http.ResponseWriter, r *http.Request) {
	var vc ssi.VerifiableCredential
	if err := readBody(r, "verify credential", credentialSchema, "verifiable credential", &vc); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.cust.Credentials.VerifyCredential(r.Context(), vc); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Credential is valid")
}

func (s *Server) handleCreatePresentation(w http.ResponseWriter, r *http.Request) {
	verify, err := boolQuery(r, "create presentation", "withCredentialsValidation")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req custodian.PresentationRequest
	if err = readBody(r, "create presentation", presentationRequestSchema,
		"presentation request", &req); err != nil {
		writeError(w, r, err)
		return
	}
	vp, err := s.cust.Credentials.Present(r.Context(), req, verify)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, vp)
}

func (s *Server) handleVerifyPresentation(w http.ResponseWriter, r *http.Request) {
	var vp ssi.VerifiablePresentation
	if err := readBody(r, "verify presentation", presentationSchema,
		"verifiable presentation", &vp); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.cust.Credentials.VerifyPresentation(r.Context(), vp); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Presentation is valid")
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	rep, err := s.cust.Reconciler.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
