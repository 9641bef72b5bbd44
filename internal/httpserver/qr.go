// internal/httpserver/qr.go
//
// Join-by-QR: encodes the lobby's join URL as a PNG so the leader can put it
// on a shared screen.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	qr "github.com/skip2/go-qrcode"
)

// handleJoinQR returns a QR code PNG pointing at the client's join page for
// this lobby.
func (s *Server) handleJoinQR(w http.ResponseWriter, r *http.Request) {
	lobbyID := chi.URLParam(r, "lobbyID")
	if _, err := s.reg.Get(lobbyID); err != nil {
		writeErr(w, err)
		return
	}
	png, err := qr.Encode(s.opts.ClientOrigin+"/join/"+lobbyID, qr.Medium, 256)
	if err != nil {
		http.Error(w, `{"error":"qr_failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
