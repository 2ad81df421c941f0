package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julienschmidt/httprouter"

	. "github.com/olajide/goaccounts"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}

	coll := client.Database(cfg.Database).Collection("users")
	if err = EnsureIndexes(ctx, coll); err != nil {
		log.Fatal(err)
	}

	key := []byte(cfg.SigningKey)
	svc := NewService(NewMongoAccountRepository(coll), key)
	files := &FileStore{Dir: cfg.UploadDir}

	router := httprouter.New()
	router.Handler(http.MethodGet, "/", RequireAuth(CurrentAccountHandler(svc), key))
	router.Handler(http.MethodPost, "/", RegisterAccountHandler(svc, files))
	router.Handler(http.MethodPost, "/login", LoginHandler(svc))
	router.Handler(http.MethodPut, "/update-user/:id", UpdateAccountHandler(svc))
	router.Handler(http.MethodDelete, "/delete-user/:id", DeleteAccountHandler(svc))
	router.Handler(http.MethodPut, "/update-user", RequireAuth(UpdateCurrentAccountHandler(svc), key))

	log.Printf("Server started. Listening on port: %s\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, router))
}
