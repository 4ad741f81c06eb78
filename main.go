package main

import (
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/stackvest/stackvest_backend/config"
	"github.com/stackvest/stackvest_backend/controllers"
	"github.com/stackvest/stackvest_backend/middleware"
	"github.com/stackvest/stackvest_backend/repositories"
	"github.com/stackvest/stackvest_backend/routes"
	"github.com/stackvest/stackvest_backend/services"
	"github.com/stackvest/stackvest_backend/utils"
	"github.com/stackvest/stackvest_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (day locks and login throttling)
	redisClient := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()
	db := client.Database(config.DBName())

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	walletRepo := repositories.NewWalletRepository(db)
	treeRepo := repositories.NewTreeRepository(db)
	packageRepo := repositories.NewPackageRepository(db)
	investmentRepo := repositories.NewInvestmentRepository(db)
	voucherRepo := repositories.NewVoucherRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	careerRepo := repositories.NewCareerRepository(db)
	jobRunRepo := repositories.NewJobRunRepository(db)
	dayLocker := repositories.NewRedisDayLocker(redisClient)

	// Services
	notifier := utils.NewWalletNotifier(db, wsHub)
	mailer := utils.NewWithdrawalMailer(wsHub)
	placementService := services.NewPlacementService(treeRepo)
	volumeService := services.NewVolumeService(treeRepo, investmentRepo)
	referralService := services.NewReferralService(treeRepo, walletRepo, investmentRepo, packageRepo, notifier)
	careerService := services.NewCareerService(treeRepo, careerRepo, walletRepo, notifier)
	voucherService := services.NewVoucherService(walletRepo, voucherRepo, voucherConfigFromEnv())
	investmentService := services.NewInvestmentService(treeRepo, packageRepo, investmentRepo, voucherService, volumeService, referralService, careerService)
	exchangeService := services.NewExchangeService(walletRepo, 1.0)
	withdrawalService := services.NewWithdrawalService(walletRepo, withdrawalRepo, treeRepo, investmentRepo, packageRepo, mailer, services.DefaultWithdrawalConfig())
	roiService := services.NewROIService(walletRepo, investmentRepo, packageRepo, notifier)
	binaryService := services.NewBinaryService(treeRepo, walletRepo, investmentRepo, packageRepo, notifier)
	dailyService := services.NewDailyService(roiService, binaryService, referralService, jobRunRepo, dayLocker)

	// Controllers
	deps := &routes.Deps{
		Auth:         controllers.NewAuthController(db, redisClient, walletRepo, treeRepo, placementService),
		Wallet:       controllers.NewWalletController(walletRepo, exchangeService),
		Investment:   controllers.NewInvestmentController(packageRepo, investmentRepo, investmentService),
		Voucher:      controllers.NewVoucherController(voucherRepo, voucherService),
		Withdrawal:   controllers.NewWithdrawalController(withdrawalRepo, withdrawalService),
		Tree:         controllers.NewTreeController(treeRepo),
		Notification: controllers.NewNotificationController(db),
		Admin:        controllers.NewAdminController(dailyService, withdrawalService, withdrawalRepo, packageRepo, careerRepo),
		Hub:          wsHub,
	}

	// Create a new Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))
	e.Use(middleware.ActivityTracker(client))
	e.Use(httpsRedirect())

	routes.RegisterRoutes(e, deps)

	// Drop expired tokens from the logout blacklist
	go middleware.CleanupBlacklist()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

// voucherConfigFromEnv starts from the default voucher policy and applies
// the VOUCHER_ALLOW_PARTIAL override when set.
func voucherConfigFromEnv() services.VoucherConfig {
	cfg := services.DefaultVoucherConfig()
	if v := os.Getenv("VOUCHER_ALLOW_PARTIAL"); v != "" {
		if allow, err := strconv.ParseBool(v); err == nil {
			cfg.AllowPartial = allow
		}
	}
	return cfg
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
