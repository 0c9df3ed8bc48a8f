package api

import (
	"net/http"
	"testing"

	"roomstay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRoom() RoomRequest {
	return RoomRequest{
		Address:     "5 Elm St",
		City:        "Portland",
		State:       "OR",
		Country:     "USA",
		Lat:         45.5,
		Lng:         -122.6,
		Name:        "Elm Studio",
		Description: "Near the park",
		Price:       95,
	}
}

func TestListAndGetRooms(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/api/v1/rooms", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[roomsResponse](t, rec).Rooms, 2)

	rec = a.do(t, http.MethodGet, "/api/v1/rooms/1", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[models.RoomDetail](t, rec)
	assert.Equal(t, "Garden Loft", detail.Name)
	assert.Zero(t, detail.NumReviews)
	assert.Nil(t, detail.AvgStarRating)
	assert.NotNil(t, detail.Images)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, "Olive", detail.Owner.FirstName)

	rec = a.do(t, http.MethodGet, "/api/v1/rooms/42", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Room couldn't be found", decode[ErrorResponse](t, rec).Message)
}

func TestSearchRooms(t *testing.T) {
	a := newTestAPI(t, nil)

	t.Run("price filter", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/v1/rooms/search?minPrice=200", 0, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decode[searchResponse](t, rec)
		require.Len(t, res.Rooms, 1)
		assert.Equal(t, "Beach House", res.Rooms[0].Name)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 20, res.Size)
	})

	t.Run("size is capped", func(t *testing.T) {
		res := decode[searchResponse](t, a.do(t, http.MethodGet, "/api/v1/rooms/search?size=500", 0, nil))
		assert.Equal(t, 20, res.Size)
	})

	t.Run("page past the end", func(t *testing.T) {
		res := decode[searchResponse](t, a.do(t, http.MethodGet, "/api/v1/rooms/search?page=3&size=1", 0, nil))
		assert.Empty(t, res.Rooms)
	})

	t.Run("out of range parameters", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/v1/rooms/search?page=0&maxLat=91", 0, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Contains(t, body.Errors, "page")
		assert.Contains(t, body.Errors, "maxLat")
	})

	t.Run("unparsable parameters", func(t *testing.T) {
		rec := a.do(t, http.MethodGet, "/api/v1/rooms/search?minPrice=abc&size=x", 0, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Contains(t, body.Errors, "minPrice")
		assert.Contains(t, body.Errors, "size")
	})
}

func TestCreateRoom(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodPost, "/api/v1/rooms", travellerID, validRoom())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room := decode[models.Room](t, rec)
	assert.NotZero(t, room.ID)
	assert.Equal(t, travellerID, room.OwnerID)

	bad := validRoom()
	bad.Name = ""
	bad.Price = 0
	bad.Lat = 120
	rec = a.do(t, http.MethodPost, "/api/v1/rooms", travellerID, bad)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Validation error", body.Message)
	assert.Contains(t, body.Errors, "name")
	assert.Contains(t, body.Errors, "price")
	assert.Contains(t, body.Errors, "lat")

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodPost, "/api/v1/rooms", 0, validRoom()).Code)
}

func TestAddRoomImage(t *testing.T) {
	a := newTestAPI(t, nil)
	img := ImageRequest{URL: "https://img.example.com/loft.jpg"}

	rec := a.do(t, http.MethodPost, "/api/v1/rooms/1/images", ownerID, img)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, img.URL, decode[models.RoomImage](t, rec).ImageURL)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodPost, "/api/v1/rooms/1/images", guestID, img).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, "/api/v1/rooms/1/images", ownerID, ImageRequest{URL: "not a url"}).Code)

	detail := decode[models.RoomDetail](t, a.do(t, http.MethodGet, "/api/v1/rooms/1", 0, nil))
	assert.Len(t, detail.Images, 1)
}

func TestUnknownRoute(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := a.do(t, http.MethodGet, "/api/v1/nowhere", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[ErrorResponse](t, rec).StatusCode)

	rec = a.do(t, http.MethodPatch, "/api/v1/rooms", 0, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
