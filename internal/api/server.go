package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/eventpass-api/docs"
	v1 "github.com/vietanh2810/eventpass-api/internal/api/handler/v1"
	"github.com/vietanh2810/eventpass-api/internal/api/middleware"
	"github.com/vietanh2810/eventpass-api/internal/config"
	"github.com/vietanh2810/eventpass-api/internal/domain"
	"github.com/vietanh2810/eventpass-api/internal/repository"
	"github.com/vietanh2810/eventpass-api/internal/repository/dao"
	"github.com/vietanh2810/eventpass-api/internal/service"
)

// ScanFeed is both the sink the check-in engine pushes to and the source the
// live dashboards read from.
type ScanFeed interface {
	service.ScanFeed
	v1.ScanFeed
}

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

type handlers struct {
	auth         *v1.AuthHandler
	user         *v1.UserHandler
	event        *v1.EventHandler
	registration *v1.RegistrationHandler
	checkin      *v1.CheckinHandler
	team         *v1.TeamHandler
	scoring      *v1.ScoringHandler
	export       *v1.ExportHandler
	feed         *v1.FeedHandler
}

func NewServer(conf *config.AppConfig, db *gorm.DB, feed ScanFeed, pub service.EventPublisher) (*Server, error) {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	registrationRepo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))

	tokens, err := service.NewTokenService([]byte(conf.API.QRSigningKey), registrationRepo)
	if err != nil {
		return nil, err
	}

	s.MountHandlers(handlers{
		auth:         s.initAuthHandler(db),
		user:         s.initUserHandler(db),
		event:        s.initEventHandler(eventRepo),
		registration: s.initRegistrationHandler(registrationRepo, eventRepo, tokens, pub),
		checkin:      s.initCheckinHandler(db, eventRepo, registrationRepo, tokens, feed, pub),
		team:         s.initTeamHandler(db, eventRepo, registrationRepo, tokens, pub),
		scoring:      s.initScoringHandler(db, eventRepo, pub),
		export:       s.initExportHandler(db, eventRepo),
		feed:         v1.NewFeedHandler(feed, conf.API.AllowedCORSDomains),
	})

	return s, nil
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(events *repository.EventRepository) *v1.EventHandler {
	svc := service.NewEventService(events)
	registry := service.NewCheckpointRegistry(events)
	handler := v1.NewEventHandler(svc, registry, s.Config.Checkin.EnforceOrderDefault)

	return handler
}

func (s *Server) initRegistrationHandler(
	registrations *repository.RegistrationRepository,
	events *repository.EventRepository,
	tokens *service.TokenService,
	pub service.EventPublisher,
) *v1.RegistrationHandler {
	svc := service.NewRegistrationService(registrations, events, tokens, pub)
	handler := v1.NewRegistrationHandler(svc)

	return handler
}

func (s *Server) initCheckinHandler(
	db *gorm.DB,
	events *repository.EventRepository,
	registrations *repository.RegistrationRepository,
	tokens *service.TokenService,
	feed ScanFeed,
	pub service.EventPublisher,
) *v1.CheckinHandler {
	scans := repository.NewScanRepository(dao.NewScanDAO(db))
	engine := service.NewCheckinEngine(tokens, events, registrations, scans, feed, pub)
	handler := v1.NewCheckinHandler(engine)

	return handler
}

func (s *Server) initTeamHandler(
	db *gorm.DB,
	events *repository.EventRepository,
	registrations *repository.RegistrationRepository,
	tokens *service.TokenService,
	pub service.EventPublisher,
) *v1.TeamHandler {
	teams := repository.NewTeamRepository(dao.NewTeamDAO(db))
	svc := service.NewTeamService(teams, events, tokens, registrations, pub)
	handler := v1.NewTeamHandler(svc)

	return handler
}

func (s *Server) initScoringHandler(db *gorm.DB, events *repository.EventRepository, pub service.EventPublisher) *v1.ScoringHandler {
	scores := repository.NewScoreRepository(dao.NewScoreDAO(db))
	teams := repository.NewTeamRepository(dao.NewTeamDAO(db))
	svc := service.NewScoringService(scores, teams, events, pub)
	handler := v1.NewScoringHandler(svc)

	return handler
}

func (s *Server) initExportHandler(db *gorm.DB, events *repository.EventRepository) *v1.ExportHandler {
	scans := repository.NewScanRepository(dao.NewScanDAO(db))
	svc := service.NewExportService(scans, events)
	handler := v1.NewExportHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api/v1"

	organizers := middleware.RequireRole(domain.RoleOrganizer)
	scanners := middleware.RequireRole(domain.RoleVolunteer, domain.RoleOrganizer)
	mentors := middleware.RequireRole(domain.RoleMentor, domain.RoleOrganizer)

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", h.auth.HandleSignup)
		auth.POST("/auth/login", h.auth.HandleLogin)
	}

	api := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		api.GET("/users/me", h.user.HandleGetMe)
		api.GET("/users/:userID", h.user.HandleGetUser)

		api.POST("/events", organizers, h.event.HandleCreateEvent)
		api.GET("/events/:eventID", h.event.HandleGetEvent)
		api.GET("/events/:eventID/checkpoints", h.event.HandleListCheckpoints)
		api.POST("/events/:eventID/checkpoints", organizers, h.event.HandleAddCheckpoint)
		api.POST("/events/:eventID/checkpoints/:name/unlock", organizers, h.event.HandleUnlockCheckpoint)
		api.POST("/events/:eventID/checkpoints/:name/lock", organizers, h.event.HandleLockCheckpoint)

		api.POST("/events/:eventID/registrations", h.registration.HandleRegister)
		api.PATCH("/registrations/:registrationID", organizers, h.registration.HandleReviewRegistration)
		api.GET("/registrations/:registrationID/token", h.registration.HandleGetToken)
		api.DELETE("/registrations/:registrationID", organizers, h.registration.HandleDeleteRegistration)

		api.POST("/events/:eventID/checkins", scanners, h.checkin.HandleCheckIn)
		api.GET("/events/:eventID/registrations/:registrationID/checkins", h.checkin.HandleHistory)

		api.GET("/events/:eventID/scans/export.csv", organizers, h.export.HandleExportScans)
		api.GET("/events/:eventID/scans/recent", organizers, h.feed.HandleRecentScans)
		api.GET("/events/:eventID/scans/live", organizers, h.feed.HandleLiveScans)

		api.POST("/events/:eventID/teams", mentors, h.team.HandleCreateTeam)
		api.GET("/events/:eventID/teams", h.team.HandleListTeams)
		api.GET("/teams/:teamID", h.team.HandleGetTeam)
		api.POST("/teams/:teamID/members", mentors, h.team.HandleAddMember)

		api.POST("/events/:eventID/rounds", mentors, h.scoring.HandleCreateRound)
		api.GET("/events/:eventID/rounds", h.scoring.HandleListRounds)
		api.PUT("/teams/:teamID/scores/:roundID", mentors, h.scoring.HandleSetScore)
		api.GET("/events/:eventID/leaderboard", h.scoring.HandleLeaderboard)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "EventPass API"
	docs.SwaggerInfo.Description = "Registration, QR check-in, team formation and scoring for live events."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
