package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/models"
	"github.com/stackvest/stackvest_backend/services"
	"github.com/stackvest/stackvest_backend/utils"
)

// AuthController handles signup, login and logout. Signup is the only
// place a user enters the binary tree.
type AuthController struct {
	DB        *mongo.Database
	Redis     *redis.Client
	Ledger    services.LedgerStore
	Tree      services.TreeStore
	Placement *services.PlacementService
}

func NewAuthController(db *mongo.Database, redisClient *redis.Client, ledger services.LedgerStore, tree services.TreeStore, placement *services.PlacementService) *AuthController {
	return &AuthController{DB: db, Redis: redisClient, Ledger: ledger, Tree: tree, Placement: placement}
}

// Signup registers a user under a referrer, provisions the wallet set and
// places the new node into the tree by spillover.
func (ac *AuthController) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	usersColl := ac.DB.Collection("users")

	count, err := usersColl.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		log.Printf("Signup: counting existing emails: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email already registered",
		})
	}

	referrer, err := ac.Tree.NodeByReferralCode(ctx, req.ReferralCode)
	if err != nil {
		log.Printf("Signup: looking up referral code %s: %v", req.ReferralCode, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}
	if referrer == nil || referrer.Status != models.UserActive {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Referral code not found",
		})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	referralCode, err := ac.uniqueReferralCode(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	now := time.Now()
	user := models.User{
		ID:            primitive.NewObjectID(),
		Email:         req.Email,
		Password:      hashedPassword,
		FullName:      req.FullName,
		UserType:      "user",
		Status:        models.UserActive,
		ReferralCode:  referralCode,
		PayoutAddress: req.PayoutAddress,
		NodeType:      models.NodeBinary,
		ReferrerID:    &referrer.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := usersColl.InsertOne(ctx, user); err != nil {
		log.Printf("Signup: inserting user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create account",
		})
	}

	placed, err := ac.Placement.Place(ctx, user.ID, referrer.ID, models.Position(req.PreferredPosition))
	if err != nil {
		// No tree slot, no account. Remove the orphaned user record.
		if _, derr := usersColl.DeleteOne(ctx, bson.M{"_id": user.ID}); derr != nil {
			log.Printf("Signup: removing user %s after placement failure: %v", user.ID.Hex(), derr)
		}
		status := statusForError(err)
		return c.JSON(status, models.Response{
			Status:  status,
			Message: errorMessage(status, err),
		})
	}

	if err := ac.Ledger.EnsureWallets(ctx, user.ID); err != nil {
		log.Printf("Signup: provisioning wallets for %s: %v", user.ID.Hex(), err)
	}

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Account created successfully",
		Data:    models.LoginResponse{Token: token, User: *placed},
	})
}

// uniqueReferralCode generates a referral code, retrying on the unlikely
// collision against the unique index.
func (ac *AuthController) uniqueReferralCode(ctx context.Context) (string, error) {
	usersColl := ac.DB.Collection("users")
	for i := 0; i < 5; i++ {
		code, err := utils.GenerateReferralCode()
		if err != nil {
			return "", err
		}
		count, err := usersColl.CountDocuments(ctx, bson.M{"referralCode": code})
		if err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", mongo.ErrNoDocuments
}

// Login authenticates by email and password and issues a JWT.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	if err := utils.ValidateLoginAttempts(req.Email, ac.Redis); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many login attempts, please try again later",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := ac.DB.Collection("users").FindOne(ctx, bson.M{"email": req.Email}).Decode(&user)
	if err != nil || !utils.CheckPassword(user.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}
	if user.Status != models.UserActive {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is not active",
		})
	}

	utils.ResetLoginAttempts(req.Email, ac.Redis)

	token, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    models.LoginResponse{Token: token, User: user},
	})
}

// Logout blacklists the presented token until its natural expiry.
func (ac *AuthController) Logout(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		middleware.BlacklistToken(authHeader[7:], time.Unix(claims.ExpiresAt, 0))
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// Me returns the authenticated user's record.
func (ac *AuthController) Me(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	if userID == primitive.NilObjectID {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Not authenticated",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	if err := ac.DB.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}
