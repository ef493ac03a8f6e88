//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/infrastructure/db/redis"
)

func TestRedisStores(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Redis Stores Integration Suite")
}

var (
	ctx       = context.Background()
	container testcontainers.Container
	client    *goredis.Client
)

var _ = BeforeSuite(func() {
	var err error
	container, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	Expect(err).NotTo(HaveOccurred())

	endpoint, err := container.Endpoint(ctx, "")
	Expect(err).NotTo(HaveOccurred())

	client, err = redis.Connect(ctx, redis.Config{Host: endpoint})
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if client != nil {
		_ = client.Close()
	}
	if container != nil {
		_ = container.Terminate(ctx)
	}
})

var _ = Describe("RevocationStore", func() {
	It("remembers banned tokens until the ttl elapses", func() {
		store := redis.NewRevocationStore(client, time.Second)

		Expect(store.Add(ctx, "tok-1")).To(Succeed())
		Expect(store.Contains(ctx, "tok-1")).To(BeTrue())
		Expect(store.Contains(ctx, "tok-2")).To(BeFalse())

		Eventually(func() (bool, error) {
			return store.Contains(ctx, "tok-1")
		}).WithTimeout(5 * time.Second).Should(BeFalse())
	})
})

var _ = Describe("ChallengeStore", func() {
	var (
		store *redis.ChallengeStore
		ch    domain.Challenge
	)

	BeforeEach(func() {
		store = redis.NewChallengeStore(client, time.Minute)

		email, err := domain.ParseEmail("it@example.com")
		Expect(err).NotTo(HaveOccurred())
		id, err := domain.NewLoginAttemptID()
		Expect(err).NotTo(HaveOccurred())
		code, err := domain.NewTwoFACode()
		Expect(err).NotTo(HaveOccurred())
		ch = domain.Challenge{Email: email, LoginAttemptID: id, Code: code}
	})

	It("round-trips a challenge and removes it", func() {
		Expect(store.Put(ctx, ch)).To(Succeed())

		got, err := store.Get(ctx, ch.Email)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(ch))

		Expect(store.Remove(ctx, ch.Email)).To(Succeed())
		_, err = store.Get(ctx, ch.Email)
		Expect(err).To(MatchError(domain.ErrNotFound))
	})

	It("consumes a matching challenge once and keeps it on a mismatch", func() {
		Expect(store.Put(ctx, ch)).To(Succeed())

		other, err := domain.NewLoginAttemptID()
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Consume(ctx, ch.Email, other, ch.Code)).To(BeFalse())

		Expect(store.Consume(ctx, ch.Email, ch.LoginAttemptID, ch.Code)).To(BeTrue())
		_, err = store.Consume(ctx, ch.Email, ch.LoginAttemptID, ch.Code)
		Expect(err).To(MatchError(domain.ErrNotFound))
	})
})
