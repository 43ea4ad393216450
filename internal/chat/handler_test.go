package chat_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/chat"
	"github.com/dcalliari/appe/internal/transport/rest"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chat Handler", func() {
	var (
		repo     *MockRepository
		router   *chi.Mux
		tokens   *auth.JWTTokenGenerator
		resident *internal.Identity
		doorman  *internal.Identity
	)

	BeforeEach(func() {
		repo = NewMockRepository(
			&chat.Contact{ID: "u-101", Name: "Ana", Role: "resident", Apartment: "101"},
			&chat.Contact{ID: "u-door", Name: "Portaria", Role: "doorman", Apartment: "P"},
			&chat.Contact{ID: "u-adm", Name: "Administração", Role: "admin", Apartment: "ADM"},
		)
		svc := chat.NewService(repo, &recordingPublisher{}, logger.Discard())
		tokens = auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, rest.Handlers{
			Auth: auth.NewHandler(auth.NewService(nil, tokens, logger.Discard()), false),
			Chat: chat.NewHandler(svc),
		}, rest.Options{LoginRequests: 5, LoginWindow: time.Minute}, logger.Discard())

		resident = &internal.Identity{UserID: "u-101", Apartment: "101", Role: internal.RoleResident}
		doorman = &internal.Identity{UserID: "u-door", Apartment: "P", Role: internal.RoleDoorman}
	})

	do := func(as *internal.Identity, method, path, body string) *httptest.ResponseRecorder {
		GinkgoHelper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if as != nil {
			token, _, err := tokens.GenerateToken(*as)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	keys := func(rec *httptest.ResponseRecorder) []string {
		GinkgoHelper()
		var raw map[string]json.RawMessage
		Expect(json.Unmarshal(rec.Body.Bytes(), &raw)).To(Succeed())
		out := make([]string, 0, len(raw))
		for k := range raw {
			out = append(out, k)
		}
		return out
	}

	It("requires a token", func() {
		Expect(do(nil, http.MethodGet, "/api/chat/users", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("wraps contacts in a users envelope", func() {
		rec := do(resident, http.MethodGet, "/api/chat/users", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(keys(rec)).To(ConsistOf("users"))

		var resp chat.ContactsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		names := []string{}
		for _, c := range resp.Users {
			names = append(names, c.Name)
		}
		Expect(names).To(ConsistOf("Portaria", "Administração"))
	})

	It("sends a message and answers 201", func() {
		rec := do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"u-door","message":"Chegou encomenda?"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var resp chat.SendMessageResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.ChatMessage).NotTo(BeNil())
		Expect(resp.ChatMessage.FromUserID).To(Equal("u-101"))
		Expect(resp.ChatMessage.IsRead).To(BeFalse())
	})

	It("refuses a message to oneself", func() {
		rec := do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"u-101","message":"eu"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeInvalidRecipient))
	})

	It("answers 404 for an unknown recipient", func() {
		rec := do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"ghost","message":"oi"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("wraps a thread in a messages envelope and marks it read for the recipient", func() {
		Expect(do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"u-door","message":"oi"}`).Code).
			To(Equal(http.StatusCreated))

		rec := do(doorman, http.MethodGet, "/api/chat/messages/u-101", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(keys(rec)).To(ConsistOf("messages"))

		var resp chat.ThreadResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Messages).To(HaveLen(1))
		Expect(resp.Messages[0].IsRead).To(BeTrue())
		Expect(repo.messages[0].IsRead).To(BeTrue())
	})

	It("returns an empty messages list for a silent peer", func() {
		rec := do(resident, http.MethodGet, "/api/chat/messages/u-adm", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(MatchJSON(`{"messages":[]}`))
	})

	It("summarizes conversations with unread counts", func() {
		Expect(do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"u-door","message":"um"}`).Code).
			To(Equal(http.StatusCreated))
		Expect(do(resident, http.MethodPost, "/api/chat/send", `{"to_user_id":"u-door","message":"dois"}`).Code).
			To(Equal(http.StatusCreated))

		rec := do(doorman, http.MethodGet, "/api/chat/conversations", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp chat.ConversationsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Conversations).To(HaveLen(1))
		Expect(resp.Conversations[0].UserID).To(Equal("u-101"))
		Expect(resp.Conversations[0].UnreadCount).To(Equal(2))
	})
})
