package httpservice

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/internal/interface/http/handlers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	App    application.Service
	Admin  application.AdminService
	Ledger ports.Ledger
	Events ports.EventBus
}

// NewRouter returns the gin engine serving the query, mint, upload and admin
// endpoints. The events stream is served only if svcs.Events is set.
func NewRouter(cfg Config, svcs Services) *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLogger(), panicRecovery())
	if cfg.EnableMetrics {
		r.Use(metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	allowOrigins := cfg.CORSAllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			handlers.CallerHeader, handlers.OriginHeader, requestIDHeader,
		},
		ExposeHeaders: []string{"Content-Length", "Content-Type", requestIDHeader},
		MaxAge:        12 * 3600,
	}))

	queryHandler := handlers.NewQueryHandler(svcs.App)
	mintHandler := handlers.NewMintHandler(svcs.App)
	adminHandler := handlers.NewAdminHandler(svcs.Admin)
	ledgerHandler := handlers.NewLedgerHandler(svcs.Ledger)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.GET("/collection", queryHandler.GetCollection)
		v1.GET("/contract/uri", queryHandler.GetContractURI)
		v1.GET("/layers", queryHandler.GetLayers)
		v1.GET("/layers/:layer/traits/:trait/data", queryHandler.GetTraitData)
		v1.GET("/hash/:hash/svg", queryHandler.GetHashSVG)
		v1.GET("/hash/:hash/metadata", queryHandler.GetHashMetadata)

		tokens := v1.Group("/tokens")
		{
			tokens.GET("/:id/uri", queryHandler.GetTokenURI)
			tokens.GET("/:id/hash", queryHandler.GetTokenHash)
			tokens.POST("/:id/render", mintHandler.SetRenderOfTokenID)
		}

		mint := v1.Group("/mint")
		{
			mint.POST("", mintHandler.Mint)
			mint.POST("/allowlist", mintHandler.AllowlistMint)
			mint.POST("/signature", mintHandler.SignatureMint)
		}
		v1.POST("/receive", mintHandler.Receive)
		v1.POST("/airdrop", mintHandler.Airdrop)

		admin := v1.Group("/admin")
		{
			admin.POST("/layers", adminHandler.AddLayer)
			admin.POST("/layers/:layer/traits/:trait", adminHandler.AddTrait)
			admin.POST("/chunks", adminHandler.AddChunk)
			admin.POST("/public-mint/toggle", adminHandler.TogglePublicMint)
			admin.POST("/allowlist/toggle", adminHandler.ToggleAllowlistMint)
			admin.POST("/mint-modes", adminHandler.SetMintModes)
			admin.POST("/prices", adminHandler.SetPrices)
			admin.POST("/mint-limits", adminHandler.SetMintLimits)
			admin.POST("/mint-window", adminHandler.SetMintWindow)
			admin.POST("/base-uri", adminHandler.SetBaseURI)
			admin.POST("/placeholder-image", adminHandler.SetPlaceholderImage)
			admin.POST("/merkle-root", adminHandler.SetMerkleRoot)
			admin.POST("/signer", adminHandler.SetSigner)
			admin.POST("/reveal", adminHandler.SetRevealSeed)
			admin.POST("/linked-traits", adminHandler.SetLinkedTraits)
			admin.POST("/withdraw-recipients", adminHandler.SetWithdrawRecipients)
			admin.POST("/contract-data", adminHandler.SetContractData)
			admin.POST("/seal", adminHandler.Seal)
			admin.POST("/withdraw", mintHandler.Withdraw)
		}

		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:address/balance", ledgerHandler.GetBalance)
			if cfg.EnableDevLedger {
				accounts.POST("/:address/deposit", ledgerHandler.Deposit)
			}
		}

		if svcs.Events != nil {
			eventsHandler := handlers.NewEventsHandler(svcs.Events, cfg.HeartbeatInterval)
			v1.GET("/events", eventsHandler.GetEventStream)
		}
	}

	return r
}
