package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/infrastructure/postgres"
	"github.com/jhoicas/restaurante-api/migrations"
	"github.com/jhoicas/restaurante-api/pkg/config"
	"github.com/jhoicas/restaurante-api/pkg/logger"
)

type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

// connect carga la configuración y abre el pool. El llamador cierra el pool.
func connect(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "restaurantctl",
		Short:         "Tareas de operación de restaurante-api (base de datos, staff, carta)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// migrate
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL embebidas pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()
			applied, err := postgres.Migrate(ctx, e.pool, migrations.Postgres, "postgres")
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Println("sin migraciones pendientes")
				return nil
			}
			for _, name := range applied {
				fmt.Println("aplicada:", name)
			}
			return nil
		},
	}

	// create-admin
	var adminEmail, adminName, adminSurname, adminPassword string
	createAdminCmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Crea un usuario del staff con rol admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if adminPassword == "" {
				adminPassword = os.Getenv("ADMIN_PASSWORD")
			}
			if adminEmail == "" || adminPassword == "" {
				return fmt.Errorf("--email y --password (o env ADMIN_PASSWORD) son requeridos")
			}
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()
			staff := usecase.NewStaffUseCase(postgres.NewUserRepository(e.pool), nil, e.cfg.Auth.BcryptCost)
			out, err := staff.Create(ctx, dto.CreateStaffRequest{
				Name:     adminName,
				Surname:  adminSurname,
				Email:    adminEmail,
				Password: adminPassword,
				Role:     entity.RoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("crear admin: %w", err)
			}
			fmt.Printf("admin creado: id=%s email=%s\n", out.ID, out.Email)
			return nil
		},
	}
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email del admin")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Admin", "Nombre")
	createAdminCmd.Flags().StringVar(&adminSurname, "surname", "Restaurante", "Apellido")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Contraseña (env ADMIN_PASSWORD)")

	// prune-tokens
	pruneCmd := &cobra.Command{
		Use:   "prune-tokens",
		Short: "Elimina de la lista de invalidación los access tokens ya expirados",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()
			tokens := auth.NewTokenService(auth.TokenConfig{},
				postgres.NewRefreshTokenRepository(e.pool),
				postgres.NewInvalidatedTokenRepository(e.pool), nil)
			n, err := tokens.PruneInvalidated(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("eliminados: %d\n", n)
			return nil
		},
	}

	// seed-menu
	var latin1 bool
	seedCmd := &cobra.Command{
		Use:   "seed-menu <archivo.csv>",
		Short: "Importa la carta desde un CSV (category,name,description,price[,vegetarian,vegan,gluten_free,spicy])",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			var r io.Reader = f
			if latin1 {
				r = charmap.ISO8859_1.NewDecoder().Reader(f)
			}
			e, err := connect(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()
			catalog := usecase.NewCatalogUseCase(postgres.NewProductRepository(e.pool),
				postgres.NewCategoryRepository(e.pool), time.Minute)
			res, err := catalog.ImportMenu(ctx, r)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				e.log.Warn().Str("file", args[0]).Str("row", s).Msg("fila omitida")
			}
			fmt.Printf("categorías creadas: %d, productos creados: %d, filas omitidas: %d\n",
				res.Categories, res.Products, len(res.Skipped))
			return nil
		},
	}
	seedCmd.Flags().BoolVar(&latin1, "latin1", false, "El archivo está en ISO-8859-1 (exportaciones de Excel antiguas)")

	root.AddCommand(migrateCmd, createAdminCmd, pruneCmd, seedCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
