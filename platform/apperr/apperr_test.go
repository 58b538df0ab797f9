package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetKindSeesThroughWrapping(t *testing.T) {
	base := NotFound("lead not found")
	wrapped := fmt.Errorf("update pipeline lead: %w", base)

	if !IsNotFound(wrapped) {
		t.Fatalf("expected wrapped error to be not found, got kind %s", GetKind(wrapped))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected plain error to be unknown kind")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Validation("x"), http.StatusBadRequest},
		{BadRequest("x"), http.StatusBadRequest},
		{Conflict("x"), http.StatusConflict},
		{Persistence("op", errors.New("db down")), http.StatusInternalServerError},
		{Propagation("op", errors.New("proposal")), http.StatusInternalServerError},
		{Internal("x"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Errorf("%s: expected status %d, got %d", tc.err.Kind, tc.want, got)
		}
	}
}

func TestPublicMessageHidesPersistenceDetail(t *testing.T) {
	err := Persistence("leads.repository.update", errors.New("pq: connection refused"))
	if err.PublicMessage() != GenericFailureMessage {
		t.Fatalf("expected generic message, got %q", err.PublicMessage())
	}
	if !errors.Is(err, err.Err) {
		t.Fatal("expected underlying error to stay reachable")
	}
}

func TestInvalidValueNamesInput(t *testing.T) {
	err := InvalidValue("kanbanBoardId", "unknown")
	if err.PublicMessage() != `invalid kanbanBoardId: "unknown"` {
		t.Fatalf("unexpected message %q", err.PublicMessage())
	}
}
