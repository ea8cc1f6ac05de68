package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/camden-git/electoralbackend/config"
	"github.com/camden-git/electoralbackend/database"
	"github.com/camden-git/electoralbackend/media"
	"github.com/camden-git/electoralbackend/permissions"
	"github.com/camden-git/electoralbackend/realtime"
	"github.com/camden-git/electoralbackend/repository"
)

const requestTimeout = 60 * time.Second

// RouterDeps carries everything the HTTP layer needs.
type RouterDeps struct {
	Config   config.Config
	DB       *gorm.DB
	Tokens   *TokenManager
	Evidence *media.Processor
	Hub      *realtime.Hub
	Logger   *zap.Logger
}

// NewRouter wires repositories, handlers and middleware under /api.
func NewRouter(d RouterDeps) (http.Handler, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}

	userRepo := repository.NewGormUserRepository(d.DB)
	roleRepo := repository.NewGormRoleRepository(d.DB)

	authHandler := NewAuthHandler(userRepo, d.Tokens, d.Logger)
	setupHandler := NewSetupHandler(d.DB, d.Logger)
	permissionHandler := &PermissionHandler{}
	geoHandler := NewGeographicHandler(repository.NewGormGeographicRepository(d.DB), d.Logger)
	typeHandler := NewTypeHandler(repository.NewGormTypeRepository(d.DB), d.Logger)
	userHandler := NewUserHandler(userRepo, roleRepo, d.Logger)
	pollingHandler := NewPollingHandler(
		repository.NewGormPollingPlaceRepository(d.DB),
		repository.NewGormPollingTableRepository(d.DB),
		d.Logger,
	)
	frontHandler := NewFrontHandler(
		repository.NewGormFrontRepository(d.DB),
		repository.NewGormElectionTypeRepository(d.DB),
		d.Logger,
	)
	actaHandler := NewActaHandler(repository.NewGormActaRepository(d.DB), d.Evidence, d.Hub, d.Logger, d.Config.MaxUploadBytes)
	resultsHandler := NewResultsHandler(sqlDB, database.NewStatementBuilder(d.Config.DBDriver), d.Hub, d.Logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   d.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	authenticate := AuthMiddleware(d.Tokens, userRepo, d.Logger)
	can := RequirePermission

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		// long-lived, so outside the request timeout
		r.Get("/votos/resultados-vivo/ws", resultsHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Post("/setup/first-admin", setupHandler.CreateFirstAdmin)
			r.Post("/auth/login", authHandler.Login)
			r.Get("/votos/resultados-vivo", resultsHandler.Live)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)

				r.Get("/auth/me", authHandler.Me)

				r.Route("/geografico", func(r chi.Router) {
					r.Get("/", geoHandler.List)
					r.Get("/padres", geoHandler.ListParents)
					r.Get("/tipos", typeHandler.List)
					r.Get("/tipos/catalogo", typeHandler.Catalog)
					r.Get("/{id}", geoHandler.Get)

					r.Group(func(r chi.Router) {
						r.Use(can(permissions.GeoManage))
						r.Post("/", geoHandler.Create)
						r.Put("/{id}", geoHandler.Update)
						r.Delete("/{id}", geoHandler.Delete)
						r.Post("/tipos", typeHandler.Add)
						r.Post("/tipos/reasignar", typeHandler.Reassign)
						r.Delete("/tipos/{tipo}", typeHandler.Delete)
					})
				})

				r.Route("/usuarios", func(r chi.Router) {
					r.Use(can(permissions.UserManage))
					r.Get("/roles", userHandler.ListRoles)
					r.Get("/permisos", permissionHandler.ListPermissionDefinitions)
					r.Get("/", userHandler.List)
					r.Post("/", userHandler.Create)
					r.Get("/{id}", userHandler.Get)
					r.Put("/{id}", userHandler.Update)
					r.Delete("/{id}", userHandler.Delete)
				})

				r.Route("/votos", func(r chi.Router) {
					r.Get("/recintos", pollingHandler.ListPlaces)
					r.Get("/recintos/{id}", pollingHandler.GetPlace)
					r.Get("/mesas", pollingHandler.ListTables)
					r.Get("/mesas/{id}", pollingHandler.GetTable)
					r.Get("/frentes", frontHandler.List)
					r.Get("/frentes/{id}", frontHandler.Get)
					r.Get("/tipos-eleccion", frontHandler.ListElectionTypes)

					r.Group(func(r chi.Router) {
						r.Use(can(permissions.PollingManage))
						r.Post("/recintos", pollingHandler.CreatePlace)
						r.Put("/recintos/{id}", pollingHandler.UpdatePlace)
						r.Delete("/recintos/{id}", pollingHandler.DeletePlace)
						r.Post("/mesas", pollingHandler.CreateTable)
						r.Put("/mesas/{id}", pollingHandler.UpdateTable)
						r.Delete("/mesas/{id}", pollingHandler.DeleteTable)
					})

					r.Group(func(r chi.Router) {
						r.Use(can(permissions.FrontManage))
						r.Post("/frentes", frontHandler.Create)
						r.Put("/frentes/{id}", frontHandler.Update)
						r.Delete("/frentes/{id}", frontHandler.Delete)
					})

					r.With(can(permissions.ActaCreate)).Post("/registrar-acta", actaHandler.Register)
					r.With(can(permissions.ActaView)).Get("/actas", actaHandler.List)
					r.With(can(permissions.ActaView)).Get("/actas/{id}", actaHandler.Get)
					r.With(can(permissions.ResultsExport)).Get("/resultados-vivo/exportar", resultsHandler.Export)
				})

				r.Group(func(r chi.Router) {
					r.Use(can(permissions.ActaView))
					evidenceDir := d.Config.EvidenceSubDir
					thumbDir := d.Config.ThumbnailsSubDir
					r.Get("/"+evidenceDir+"/*", AssetServer(d.Config.MediaStoragePath, evidenceDir, d.Logger))
					r.Get("/"+thumbDir+"/*", AssetServer(d.Config.MediaStoragePath, thumbDir, d.Logger))
				})
			})
		})
	})

	return r, nil
}
