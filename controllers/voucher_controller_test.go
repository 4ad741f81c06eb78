package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
)

type stubVoucherStore struct {
	voucher *models.Voucher
	err     error
}

func (s *stubVoucherStore) Insert(ctx context.Context, v *models.Voucher) error { return nil }

func (s *stubVoucherStore) Voucher(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	return s.voucher, s.err
}

func (s *stubVoucherStore) ByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Voucher, error) {
	return nil, nil
}

func (s *stubVoucherStore) MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return false, nil
}

func (s *stubVoucherStore) MarkExpired(ctx context.Context, id primitive.ObjectID) error { return nil }

func (s *stubVoucherStore) Restore(ctx context.Context, id primitive.ObjectID) error { return nil }

// authedContext builds an echo context carrying the parsed JWT the way the
// JWT middleware leaves it.
func authedContext(e *echo.Echo, method, target string, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &middleware.JwtCustomClaims{
		UserID:   userID.Hex(),
		UserType: "user",
	})
	c.Set("user", token)
	return c, rec
}

func TestGetVoucherQRUnknownVoucherReturnsNotFound(t *testing.T) {
	e := echo.New()
	userID := primitive.NewObjectID()
	vc := NewVoucherController(&stubVoucherStore{err: services.ErrVoucherNotFound}, nil)

	c, rec := authedContext(e, http.MethodGet, "/api/vouchers/x/qr", userID)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	require.NoError(t, vc.GetVoucherQR(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.Equal(t, services.ErrVoucherNotFound.Error(), resp.Message)
}

func TestGetVoucherQRForeignVoucherReturnsNotFound(t *testing.T) {
	e := echo.New()
	owner := primitive.NewObjectID()
	requester := primitive.NewObjectID()
	store := &stubVoucherStore{voucher: &models.Voucher{
		ID:     primitive.NewObjectID(),
		UserID: owner,
		Code:   "voucher-code",
		Status: models.VoucherActive,
	}}
	vc := NewVoucherController(store, nil)

	c, rec := authedContext(e, http.MethodGet, "/api/vouchers/x/qr", requester)
	c.SetParamNames("id")
	c.SetParamValues(store.voucher.ID.Hex())

	require.NoError(t, vc.GetVoucherQR(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
