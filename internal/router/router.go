package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	evmem "petradar/internal/adapters/events/memory"
	evrabbit "petradar/internal/adapters/events/rabbitmq"
	geonominatim "petradar/internal/adapters/geocode/nominatim"
	georedis "petradar/internal/adapters/geocode/rediscache"
	objfs "petradar/internal/adapters/objstore/fs"
	objminio "petradar/internal/adapters/objstore/minio"
	mem "petradar/internal/adapters/storage/memory"
	pg "petradar/internal/adapters/storage/postgres"
	"petradar/internal/adapters/vision/httpvision"
	visionstub "petradar/internal/adapters/vision/stub"
	"petradar/internal/config"
	"petradar/internal/domain/cv"
	"petradar/internal/domain/foundpets"
	"petradar/internal/domain/matches"
	"petradar/internal/domain/matching"
	"petradar/internal/domain/pets"
	"petradar/internal/middleware"
	"petradar/internal/platform/logger"
	"petradar/internal/ports/auth"
	"petradar/internal/ports/events"
	"petradar/internal/ports/geocode"
	"petradar/internal/ports/objstore"
	"petradar/internal/ports/vision"
	"petradar/internal/tasks"
)

type Options struct {
	Cfg    config.Config
	Log    logger.Logger
	Runner *tasks.Runner

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, decide por env / in-memory.
	DB *sql.DB

	// Overrides para tests; nil => se resuelven desde Cfg.
	Detector  vision.Detector
	Geocoder  geocode.Geocoder
	Store     objstore.Store
	Publisher events.Publisher
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var (
		petRepo      pets.Repository
		photoRepo    pets.PhotoRepository
		matchRepo    matches.Repository
		foundPetRepo foundpets.Repository
		finderLookup matches.FoundPetLookup
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil && opts.Cfg.DBDSN != "" {
		opened, err := pg.Open(opts.Cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	if db != nil {
		petRepo = pg.NewPetsRepo(db)
		photoRepo = pg.NewPhotosRepo(db)
		matchRepo = pg.NewMatchesRepo(db)
		fpRepo := pg.NewFoundPetsRepo(db)
		foundPetRepo = fpRepo
		finderLookup = fpRepo
	} else {
		petRepo = mem.NewPetRepo()
		photoRepo = mem.NewPhotoRepo()
		fpRepo := mem.NewFoundPetRepo()
		foundPetRepo = fpRepo
		finderLookup = fpRepo
		matchRepo = mem.NewMatchRepo(petRepo, fpRepo)
	}

	// Colaboradores externos; cada uno con fallback local para dev.
	detector := opts.Detector
	if detector == nil {
		if opts.Cfg.VisionURL != "" {
			d, err := httpvision.New(opts.Cfg.VisionURL, opts.Cfg.VisionTimeout)
			if err != nil {
				return nil, err
			}
			detector = d
		} else {
			detector = visionstub.New()
		}
	}

	geocoder := opts.Geocoder
	if geocoder == nil {
		g, err := geonominatim.New(opts.Cfg.GeocoderURL, opts.Cfg.GeocoderTimeout)
		if err != nil {
			return nil, err
		}
		geocoder = g
		if opts.Cfg.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{Addr: opts.Cfg.RedisAddr})
			geocoder = georedis.New(g, rdb, opts.Cfg.GeocodeCacheTTL)
		}
	}

	store := opts.Store
	if store == nil {
		if opts.Cfg.MinIOEndpoint != "" {
			s, err := objminio.New(objminio.Options{
				Endpoint:       opts.Cfg.MinIOEndpoint,
				PublicEndpoint: opts.Cfg.MinIOPublicEndpoint,
				AccessKey:      opts.Cfg.MinIOAccessKey,
				SecretKey:      opts.Cfg.MinIOSecretKey,
				Bucket:         opts.Cfg.MinIOBucket,
				UseSSL:         opts.Cfg.MinIOUseSSL,
			}, log)
			if err != nil {
				return nil, err
			}
			store = s
		} else {
			s, err := objfs.New(opts.Cfg.StorageDir, opts.Cfg.StorageBaseURL)
			if err != nil {
				return nil, err
			}
			store = s
		}
	}

	publisher := opts.Publisher
	if publisher == nil {
		if opts.Cfg.RabbitMQURL != "" {
			p, err := evrabbit.New(opts.Cfg.RabbitMQURL, opts.Cfg.RabbitMQExchange, log)
			if err != nil {
				return nil, err
			}
			publisher = p
		} else {
			publisher = evmem.NewPublisher()
		}
	}

	// Motor de matching sobre la población de lost pets.
	source := pets.NewCandidateSource(petRepo, photoRepo)
	engine, err := matching.NewEngine(opts.Cfg.Matching, opts.Cfg.Retrieval, source)
	if err != nil {
		return nil, err
	}

	// Services por módulo
	petsSvc := pets.NewService(petRepo, photoRepo, geocoder, store, detector)
	matchesSvc := matches.NewService(matchRepo, petRepo, finderLookup, publisher)
	foundPetsSvc := foundpets.NewService(foundPetRepo, engine, matchesSvc, geocoder, detector, store, log)
	cvSvc := cv.NewService(photoRepo, detector, opts.Cfg.Matching)

	// Rutas por módulo
	pets.RegisterRoutes(r, petsSvc, opts.Runner)
	foundpets.RegisterRoutes(r, foundPetsSvc, opts.Runner)
	matches.RegisterRoutes(r, matchesSvc)
	cv.RegisterRoutes(r, cvSvc)
	tasks.RegisterRoutes(r, opts.Runner)

	return r, nil
}
