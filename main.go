package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Rhymond/go-money"
	"github.com/TruongV2905/billionaire-boardgame/db"
	"github.com/go-zoo/bone"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/vrischmann/envconfig"
)

// config stores application configuration, it is controlled via environment
// variables on application startup.
type config struct {
	Listen      string `envconfig:"default=:8080"`
	Driver      string `envconfig:"default=sqlite"`
	DSN         string `envconfig:"default=billionaire.db"`
	StorageKey  string `envconfig:"default=players"`
	Currency    string `envconfig:"default=USD"`
	PassGoBonus int64  `envconfig:"default=2000"`
	MinPlayers  int    `envconfig:"default=2"`
	MaxPlayers  int    `envconfig:"default=5"`
	MaxAmount   int64  `envconfig:"default=5000"`
	MaxBalance  int64  `envconfig:"default=1000000000"`
}

var conf config

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("marshaling JSON response")
	}
}

func respondStatus(w http.ResponseWriter, r apiResponse) {
	switch {
	case r.body != nil:
		respondJSON(w, r.body)
	case r.status == http.StatusNoContent:
		w.WriteHeader(r.status)
	default:
		http.Error(w, r.msg, r.status)
	}
}

func queryPlayerID(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

func queryAmount(r *http.Request, name string, max int64) (int64, bool) {
	amount, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil || amount < 0 || amount > max {
		return 0, false
	}
	return amount, true
}

func mainRouter(app *application) http.Handler {
	mux := bone.New()

	mux.PostFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		var data struct {
			Names         []string `json:"names"`
			StartingMoney int64    `json:"startingMoney"`
		}
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		names := make([]string, 0, len(data.Names))
		for _, n := range data.Names {
			n = strings.TrimSpace(n)
			if n == "" {
				http.Error(w, "player names must not be empty", http.StatusBadRequest)
				return
			}
			names = append(names, n)
		}
		if len(names) < app.conf.MinPlayers || len(names) > app.conf.MaxPlayers {
			http.Error(w, "invalid player count", http.StatusBadRequest)
			return
		}
		if data.StartingMoney < 0 || data.StartingMoney > app.conf.MaxBalance {
			http.Error(w, "invalid startingMoney", http.StatusBadRequest)
			return
		}

		resp, err := app.start(names, data.StartingMoney)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"names":         names,
				"startingMoney": data.StartingMoney,
			}).WithError(err).Error("starting session")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/players", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, app.players())
	})

	mux.GetFunc("/player", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}
		p, found := app.player(playerID)
		if !found {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		respondJSON(w, p)
	})

	mux.GetFunc("/credit", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}
		amount, ok := queryAmount(r, "amount", app.conf.MaxAmount)
		if !ok {
			http.Error(w, "invalid amount parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.credit(playerID, amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"playerID": playerID,
				"amount":   amount,
			}).WithError(err).Error("crediting player from bank")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/passGo", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.passGo(playerID)
		if err != nil {
			logrus.WithField("playerID", playerID).WithError(err).Error("paying departure bonus")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/debit", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}
		amount, ok := queryAmount(r, "amount", app.conf.MaxAmount)
		if !ok {
			http.Error(w, "invalid amount parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.debit(playerID, amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"playerID": playerID,
				"amount":   amount,
			}).WithError(err).Error("debiting player to bank")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/setMoney", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}
		amount, ok := queryAmount(r, "money", app.conf.MaxBalance)
		if !ok {
			http.Error(w, "invalid money parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.setMoney(playerID, amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"playerID": playerID,
				"money":    amount,
			}).WithError(err).Error("setting player money")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/transfer", func(w http.ResponseWriter, r *http.Request) {
		fromID, ok := queryPlayerID(r, "fromId")
		if !ok {
			http.Error(w, "invalid fromId parameter", http.StatusBadRequest)
			return
		}
		toID, ok := queryPlayerID(r, "toId")
		if !ok {
			http.Error(w, "invalid toId parameter", http.StatusBadRequest)
			return
		}
		amount, ok := queryAmount(r, "amount", app.conf.MaxAmount)
		if !ok {
			http.Error(w, "invalid amount parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.transfer(fromID, toID, amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"fromID": fromID,
				"toID":   toID,
				"amount": amount,
			}).WithError(err).Error("transferring money")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/collect", func(w http.ResponseWriter, r *http.Request) {
		toID, ok := queryPlayerID(r, "toId")
		if !ok {
			http.Error(w, "invalid toId parameter", http.StatusBadRequest)
			return
		}
		amount, ok := queryAmount(r, "amount", app.conf.MaxAmount)
		if !ok {
			http.Error(w, "invalid amount parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.collect(toID, amount)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"toID":   toID,
				"amount": amount,
			}).WithError(err).Error("collecting money from all players")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/bankrupt", func(w http.ResponseWriter, r *http.Request) {
		playerID, ok := queryPlayerID(r, "playerId")
		if !ok {
			http.Error(w, "invalid playerId parameter", http.StatusBadRequest)
			return
		}

		resp, err := app.bankrupt(playerID)
		if err != nil {
			logrus.WithField("playerID", playerID).WithError(err).Error("removing bankrupt player")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *resp)
	})

	mux.GetFunc("/reset", func(w http.ResponseWriter, r *http.Request) {
		if err := app.reset(); err != nil {
			logrus.WithError(err).Error("resetting session")
			http.Error(w, "unexpected error", http.StatusInternalServerError)
			return
		}
		respondStatus(w, *respOK())
	})
	return mux
}

func main() {
	if err := envconfig.InitWithPrefix(&conf, "BILLIONAIRE"); err != nil {
		logrus.WithError(err).Fatal("parsing environment variables")
	}
	if money.GetCurrency(conf.Currency) == nil {
		logrus.WithField("currency", conf.Currency).Fatal("unknown currency")
	}

	// Establish main database connection
	dbh, err := db.Connect(conf.Driver, conf.DSN)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"driver": conf.Driver,
			"error":  err,
		}).Fatal("connecting to DB")
	}
	defer dbh.Close()

	app, err := newApplication(dbh, conf)
	if err != nil {
		logrus.WithError(err).Fatal("restoring session")
	}

	server := &http.Server{
		Addr:    conf.Listen,
		Handler: cors.Default().Handler(mainRouter(app)),
	}
	stopped := make(chan struct{})
	go func() {
		logrus.WithField("listen", conf.Listen).Info("starting web server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logrus.WithError(err).Error("http server stopped with error")
		}
		close(stopped)
	}()
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c
	if err := server.Shutdown(context.TODO()); err != nil {
		logrus.WithError(err).Error("calling shutdown on http server")
	}
	<-stopped
	logrus.Info("graceful shutdown complete")
}
