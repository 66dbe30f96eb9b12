package server

import (
	"shpfusion-api/internal/handler"
	"shpfusion-api/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	paymentHandler  *handler.PaymentHandler
	userHandler     *handler.UserHandler
	catalogHandler  *handler.CatalogHandler
	tokenSecret     string
}

func NewServer(
	checkoutHandler *handler.CheckoutHandler,
	paymentHandler *handler.PaymentHandler,
	userHandler *handler.UserHandler,
	catalogHandler *handler.CatalogHandler,
	tokenSecret string,
	log *zap.Logger,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				log.Error("request", fields...)
			} else {
				log.Info("request", fields...)
			}
			return nil
		},
	}))

	s := &Server{
		echo:            e,
		checkoutHandler: checkoutHandler,
		paymentHandler:  paymentHandler,
		userHandler:     userHandler,
		catalogHandler:  catalogHandler,
		tokenSecret:     tokenSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- order / payment flow --------
	api.POST("/checkout", s.checkoutHandler.Checkout)
	api.GET("/payment-select", s.checkoutHandler.PaymentSelect)
	api.POST("/create-stripe-payment", s.paymentHandler.CreateStripePayment)
	api.POST("/create-paypal-payment", s.paymentHandler.CreatePaypalPayment)
	api.POST("/confirm-order", s.checkoutHandler.ConfirmOrder)

	// -------- provider webhooks / callbacks --------
	api.POST("/webhook", s.paymentHandler.StripeWebhook)
	api.GET("/paypal-capture", s.paymentHandler.PaypalCapture)

	// -------- users --------
	users := api.Group("/users")
	users.POST("/signup", s.userHandler.Signup)
	users.POST("/login", s.userHandler.Login)
	users.POST("/logout", s.userHandler.Logout)
	users.POST("/verifyemail", s.userHandler.VerifyEmail)
	users.POST("/resend-verification", s.userHandler.ResendVerification)
	users.POST("/forgot-password", s.userHandler.ForgotPassword)
	users.POST("/verify-reset-token", s.userHandler.VerifyResetToken)
	users.POST("/reset-password", s.userHandler.ResetPassword)

	authed := api.Group("", middleware.RequireAuth(s.tokenSecret))
	authed.GET("/users/me", s.userHandler.Me)
	authed.POST("/download-file", s.checkoutHandler.DownloadFile)

	// -------- catalog / marketing --------
	api.GET("/streamgraphics/fetch", s.catalogHandler.FetchStreamGraphics)
	api.GET("/characterdesigns/fetch", s.catalogHandler.FetchCharacterDesigns)
	api.GET("/products/:id", s.catalogHandler.GetProduct)
	api.POST("/subscribe", s.catalogHandler.Subscribe)
	api.POST("/contact", s.catalogHandler.Contact)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
