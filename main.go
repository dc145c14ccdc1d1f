package main

import (
	"log"
	"net/http"
	"os"

	"proposal-cms/cache"
	"proposal-cms/compiler"
	"proposal-cms/config"
	"proposal-cms/handlers"
	"proposal-cms/middleware"
	"proposal-cms/repositories"
	"proposal-cms/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	db := config.InitDB()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	proposalRepo := repositories.NewProposalRepository(db)
	blockRepo := repositories.NewBlockRepository(db)
	templateRepo := repositories.NewTemplateRepository(db)
	componentRepo := repositories.NewComponentRepository(db)

	// Initialize services
	renderCache := cache.NewRenderCache(config.RenderCacheTTL)
	comp := compiler.New(config.CompileTimeout)

	authService := services.NewAuthService(userRepo)
	assemblyService := services.NewAssemblyService(db, proposalRepo, blockRepo, templateRepo, componentRepo)
	proposalService := services.NewProposalService(proposalRepo, assemblyService)
	orderingService := services.NewOrderingService(db, proposalRepo, blockRepo, componentRepo)
	componentService := services.NewComponentService(db, componentRepo, comp, renderCache)
	templateService := services.NewTemplateService(templateRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	proposalHandler := handlers.NewProposalHandler(proposalService, orderingService)
	componentHandler := handlers.NewComponentHandler(componentService)
	templateHandler := handlers.NewTemplateHandler(templateService)

	// Setup router
	router := gin.Default()
	router.Use(middleware.RequestID())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Compiled artifacts (public, consumed by the renderer)
		v1.GET("/components/:block_kind", componentHandler.GetArtifact)

		// Protected routes
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Profile
			protected.GET("/profile", authHandler.GetProfile)

			// Proposals and their blocks
			proposals := protected.Group("/proposals")
			{
				proposals.POST("", proposalHandler.CreateProposal)
				proposals.GET("", proposalHandler.GetProposals)
				proposals.GET("/:id", proposalHandler.GetProposal)
				proposals.DELETE("/:id", proposalHandler.DeleteProposal)
				proposals.PUT("/:id/status", proposalHandler.UpdateStatus)
				proposals.POST("/:id/blocks", proposalHandler.CreateBlock)
				proposals.PATCH("/:id/blocks", proposalHandler.PatchBlocks)
				proposals.DELETE("/:id/blocks/:block_id", proposalHandler.DeleteBlock)
			}

			// Block templates
			templates := protected.Group("/templates")
			{
				templates.POST("", middleware.RequireRole("editor", "admin"), templateHandler.CreateTemplate)
				templates.GET("", templateHandler.GetTemplates)
				templates.GET("/:id", templateHandler.GetTemplate)
				templates.PUT("/:id", middleware.RequireRole("editor", "admin"), templateHandler.UpdateTemplate)
			}

			// Component source maintenance
			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.POST("/components", componentHandler.Upsert)
				admin.POST("/components/:block_kind/rollback", componentHandler.Rollback)
				admin.GET("/components/:block_kind/versions", componentHandler.GetVersions)
				admin.GET("/components/:block_kind/versions/:version_number", componentHandler.GetVersion)
				admin.DELETE("/components/:block_kind", componentHandler.InvalidateCache)
			}
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
