package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staylinehq/stayline/internal/apiserver/database"
	"github.com/staylinehq/stayline/internal/common/dto"
	"github.com/staylinehq/stayline/internal/pipeline"
)

func TestCreateInquiryIntake(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	rep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &hotel.ID)
	p := principalFor(rep)

	req := dto.CreateInquiryRequest{
		ClientName:  "Wanjiru & Co",
		ClientEmail: "events@wanjiru.test",
		EventType:   "MIXED",
		StartDate:   time.Now().Add(20 * 24 * time.Hour),
		EndDate:     time.Now().Add(22 * 24 * time.Hour),
		GuestCount:  120,
		Conferencing: database.ConferencingRequirement{
			Required: true, Attendees: 120, RoomLayout: "theatre",
			Equipment: []string{"projector", "PA"},
		},
		Lodging:       database.LodgingRequirement{Required: true, Rooms: 60, Nights: 2},
		SourceChannel: "website",
	}
	w := env.do(t, p, http.MethodPost, "/api/inquiries", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	inquiry := decode[database.Inquiry](t, w)
	assert.Equal(t, pipeline.InquiryNew, inquiry.Status)
	assert.Equal(t, hotel.ID, inquiry.HotelID)
	assert.Equal(t, rep.ID, inquiry.CreatedBy)
	assert.True(t, inquiry.Conferencing.Required)

	t.Run("rejects unknown event type", func(t *testing.T) {
		bad := req
		bad.EventType = "WEDDING"
		w := env.do(t, p, http.MethodPost, "/api/inquiries", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects inverted dates", func(t *testing.T) {
		bad := req
		bad.StartDate = req.EndDate
		bad.EndDate = req.StartDate
		w := env.do(t, p, http.MethodPost, "/api/inquiries", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInquiryStatusTransitions(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	rep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &hotel.ID)
	inquiry := env.seedInquiry(t, hotel.ID, rep.ID)
	p := principalFor(rep)
	statusPath := fmt.Sprintf("/api/inquiries/%d/status", inquiry.ID)

	// forward skip NEW -> QUALIFIED is legal
	w := env.do(t, p, http.MethodPut, statusPath, dto.UpdateInquiryStatusRequest{Status: "QUALIFIED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// backward move is rejected
	w = env.do(t, p, http.MethodPut, statusPath, dto.UpdateInquiryStatusRequest{Status: "CONTACTED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// LOST is reachable from any non-terminal state
	w = env.do(t, p, http.MethodPut, statusPath, dto.UpdateInquiryStatusRequest{Status: "LOST"})
	require.Equal(t, http.StatusOK, w.Code)

	// terminal states are frozen
	w = env.do(t, p, http.MethodPut, statusPath, dto.UpdateInquiryStatusRequest{Status: "CONTACTED"})
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(t, p, http.MethodPut, fmt.Sprintf("/api/inquiries/%d", inquiry.ID),
		dto.UpdateInquiryRequest{Purpose: ptr("revised agenda")})
	assert.Equal(t, http.StatusConflict, w.Code, "terminal inquiries must reject content edits")
}

func ptr[T any](v T) *T { return &v }

func TestAssignInquiryNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	manager := env.seedUser(t, "manager@acacia.test", database.RoleSalesManager, &hotel.ID)
	rep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &hotel.ID)
	inquiry := env.seedInquiry(t, hotel.ID, manager.ID)
	p := principalFor(manager)

	w := env.do(t, p, http.MethodPut, fmt.Sprintf("/api/inquiries/%d/assign", inquiry.ID),
		dto.AssignInquiryRequest{UserID: rep.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rows, err := env.store.PendingOutbox(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, rep.ID, rows[0].UserID)
	assert.Equal(t, "Inquiry assigned to you", rows[0].Title)

	t.Run("rejects assignee from another hotel", func(t *testing.T) {
		other := env.seedHotel(t, "Baobab Lodge")
		stranger := env.seedUser(t, "rep@baobab.test", database.RoleSalesRep, &other.ID)
		w := env.do(t, p, http.MethodPut, fmt.Sprintf("/api/inquiries/%d/assign", inquiry.ID),
			dto.AssignInquiryRequest{UserID: stranger.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("status change by someone else notifies the assignee", func(t *testing.T) {
		w := env.do(t, p, http.MethodPut, fmt.Sprintf("/api/inquiries/%d/status", inquiry.ID),
			dto.UpdateInquiryStatusRequest{Status: "CONTACTED"})
		require.Equal(t, http.StatusOK, w.Code)

		rows, err := env.store.PendingOutbox(t.Context(), 10)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, rep.ID, rows[1].UserID)
		assert.Equal(t, "Inquiry status changed", rows[1].Title)
	})
}

func TestInquiryNotesAppendOnly(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	rep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &hotel.ID)
	inquiry := env.seedInquiry(t, hotel.ID, rep.ID)
	p := principalFor(rep)

	for _, text := range []string{"called client", "sent brochure"} {
		w := env.do(t, p, http.MethodPost, fmt.Sprintf("/api/inquiries/%d/notes", inquiry.ID),
			dto.AddNoteRequest{Text: text})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := env.do(t, p, http.MethodGet, fmt.Sprintf("/api/inquiries/%d", inquiry.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[database.Inquiry](t, w)
	require.Len(t, got.Notes, 2)
	assert.Equal(t, "called client", got.Notes[0].Text)
	assert.Equal(t, "sent brochure", got.Notes[1].Text)
}

func TestInquiryHotelScopeIsolation(t *testing.T) {
	env := newTestEnv(t)
	acacia := env.seedHotel(t, "Acacia Grand")
	baobab := env.seedHotel(t, "Baobab Lodge")
	acaciaRep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &acacia.ID)
	baobabRep := env.seedUser(t, "rep@baobab.test", database.RoleSalesRep, &baobab.ID)
	inquiry := env.seedInquiry(t, acacia.ID, acaciaRep.ID)
	env.seedInquiry(t, baobab.ID, baobabRep.ID)

	w := env.do(t, principalFor(baobabRep), http.MethodGet, fmt.Sprintf("/api/inquiries/%d", inquiry.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, principalFor(baobabRep), http.MethodGet, "/api/inquiries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]database.Inquiry](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, baobab.ID, list[0].HotelID)

	admin := env.seedUser(t, "root@stayline.test", database.RoleSystemAdmin, nil)
	w = env.do(t, principalFor(admin), http.MethodGet, "/api/inquiries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]database.Inquiry](t, w), 2)
}

func TestListInquiriesFilters(t *testing.T) {
	env := newTestEnv(t)
	hotel := env.seedHotel(t, "Acacia Grand")
	rep := env.seedUser(t, "rep@acacia.test", database.RoleSalesRep, &hotel.ID)
	p := principalFor(rep)

	first := env.seedInquiry(t, hotel.ID, rep.ID)
	env.seedInquiry(t, hotel.ID, rep.ID)

	w := env.do(t, p, http.MethodPut, fmt.Sprintf("/api/inquiries/%d/status", first.ID),
		dto.UpdateInquiryStatusRequest{Status: "CONTACTED"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, p, http.MethodGet, "/api/inquiries?status=CONTACTED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]database.Inquiry](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, first.ID, list[0].ID)

	w = env.do(t, p, http.MethodGet, "/api/inquiries?page=1&page_size=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]database.Inquiry](t, w), 1)
}
