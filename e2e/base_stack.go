package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/suite"

	"newsdesk/domain"
	"newsdesk/news"
	"newsdesk/repositories"
	"newsdesk/runtime/workers"
	"newsdesk/services"
	"newsdesk/store"
)

// BaseStackSuite boots the whole service stack in-process: the badger store,
// the supervised fanout worker, auth, news and chat. Scenarios talk to the
// same service surfaces the transport layer does.
type BaseStackSuite struct {
	suite.Suite

	Config Config
	Log    *slog.Logger

	db    *badger.DB
	Store *store.BadgerStore
	Auth  services.IAuthService
	News  services.INewsService
	Chat  services.IChatService

	sup     *workers.Supervisor
	supDone chan struct{}
	index   *news.Index
}

func (s *BaseStackSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg
	s.Log = slog.Default()

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db

	s.Store = store.NewBadgerStore(db, s.Log)

	catalog, err := news.LoadCatalog()
	s.Require().NoError(err)
	index, err := news.NewIndex(catalog)
	s.Require().NoError(err)
	s.index = index

	s.Auth = services.NewAuthService(repositories.NewUserRepository(db),
		[]byte(s.Config.AuthSecret), time.Hour)
	s.News = services.NewNewsService(catalog, index, s.Config.SecretKeyword, s.Log)
	s.Chat = services.NewChatService(s.Store, s.Log)

	s.sup = workers.NewSupervisor(s.Log, 100*time.Millisecond)
	s.sup.Add(workers.NewSnapshotFanout(s.Log, s.Store))
	s.supDone = make(chan struct{})
	go func() {
		s.sup.Run(context.Background())
		close(s.supDone)
	}()
}

func (s *BaseStackSuite) TearDownSuite() {
	s.sup.Stop()
	select {
	case <-s.supDone:
	case <-time.After(5 * time.Second):
		s.T().Fatal("supervisor did not drain on teardown")
	}
	s.Require().NoError(s.index.Close())
	s.Require().NoError(s.db.Close())
}

// SignUp registers a throwaway account and returns its session.
func (s *BaseStackSuite) SignUp(email string) services.Session {
	session, err := s.Auth.Register(email, "Str0ng&Secret#2026")
	s.Require().NoError(err)
	return session
}

func (s *BaseStackSuite) Dump(label string, messages []domain.Message) {
	if !s.Config.DebugJSON {
		return
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	s.Require().NoError(err)
	fmt.Printf("--- %s ---\n%s\n", label, data)
}
