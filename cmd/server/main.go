package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/VitaminP8/linkfeed/internal/apperr"
	"github.com/VitaminP8/linkfeed/internal/auth"
	"github.com/VitaminP8/linkfeed/internal/config"
	"github.com/VitaminP8/linkfeed/internal/link"
	"github.com/VitaminP8/linkfeed/internal/subscription"
	"github.com/VitaminP8/linkfeed/internal/user"
	"github.com/jinzhu/gorm"

	"github.com/VitaminP8/linkfeed/graph"
	"github.com/VitaminP8/linkfeed/graph/generated"
	"github.com/VitaminP8/linkfeed/internal/storage/memory"
	"github.com/VitaminP8/linkfeed/internal/storage/postgres"
)

// ссылки из туториала, которые кладутся в хранилище по флагу -seed
var seedLinks = []struct {
	description string
	url         string
}{
	{"Fullstack tutorial for GraphQL", "www.howtographql.com"},
	{"GraphQL official website", "graphql.org"},
}

func main() {
	storageType := flag.String("storage", "memory", "Тип хранилища: memory или postgres")
	seed := flag.Bool("seed", false, "Добавить ссылки из туториала при старте")
	flag.Parse()

	// загружаем .env и настройки из нашего config.go
	cfg := config.Load()

	var linkStore link.LinkStorage
	var userStore user.UserStorage
	var db *gorm.DB

	switch *storageType {
	case "postgres":
		var err error
		db, err = postgres.Open(postgres.DSN())
		if err != nil {
			log.Fatal(err)
		}
		if err = postgres.Migrate(db); err != nil {
			log.Fatal(err)
		}

		log.Println("Используется PostgreSQL хранилище")
		linkStore = postgres.NewLinkPostgresStorage(db)
		userStore = postgres.NewUserPostgresStorage(db)

	case "memory":
		log.Println("Используется in-memory хранилище")
		users := memory.NewUserMemoryStorage()
		linkStore = memory.NewLinkMemoryStorage(users)
		userStore = users

	default:
		log.Fatalf("неизвестный тип хранилища: %s", *storageType)
	}

	if *seed {
		for _, s := range seedLinks {
			if _, err := linkStore.CreateLink(context.Background(), s.description, s.url, nil); err != nil {
				log.Fatalf("failed to seed links: %v", err)
			}
		}
		log.Printf("Добавлено %d ссылок", len(seedLinks))
	}

	// Инициализация резолвера
	resolver := &graph.Resolver{
		LinkStore:           linkStore,
		UserStore:           userStore,
		SubscriptionManager: subscription.NewSubscriptionManager(),
		PostRequiresAuth:    cfg.PostRequiresAuth,
	}

	// Создаем новый сервер GraphQL с резолверами
	srv := handler.NewDefaultServer(generated.NewExecutableSchema(generated.Config{
		Resolvers: resolver,
	}))
	srv.SetErrorPresenter(apperr.Presenter)

	mux := http.NewServeMux()
	// AuthMiddleware - http.Handler, который вытаскивает JWT токен из заголовка, проверяет его и сохраняет userID в context
	mux.Handle("/query", auth.AuthMiddleware(srv))
	// Страница с тестовым интерфейсом Playground
	mux.Handle("/", playground.Handler("GraphQL Playground", "/query"))

	// HTTP сервер
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	// запуск HTTP сервер
	go func() {
		log.Printf("Сервер запущен на http://localhost:%s/", cfg.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка сервера: %v", err)
		}
	}()

	// Ожидание SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // ждет сигнал

	log.Println("Завершение...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Ошибка при завершении сервера: %v", err)
	}

	if err := postgres.Close(db); err != nil {
		log.Println(err)
	}

	log.Println("Сервер остановлен корректно")
}
