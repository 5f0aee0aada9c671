package logincmder_test

import (
	"context"
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	logincmder "github.com/anmerino-pnd/proyectoCenace/cmd/cenace/login"
	"github.com/anmerino-pnd/proyectoCenace/pkg/backend"
	"github.com/anmerino-pnd/proyectoCenace/pkg/dotdir"
	"github.com/anmerino-pnd/proyectoCenace/pkg/mockbackend"
)

var _ = Describe("login commands", func() {
	var (
		ctx       context.Context
		srv       *mockbackend.Server
		client    *backend.Client
		endpoint  string
		configDir string
	)

	// withRootFlags adds the flags the root command provides.
	withRootFlags := func(cmd *cobra.Command, args ...string) *cobra.Command {
		cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
		cmd.PersistentFlags().String("config-dir", "", "Override path to .cenace/ config directory")
		cmd.SetArgs(append([]string{"--config-dir", configDir}, args...))
		return cmd
	}

	BeforeEach(func() {
		ctx = context.Background()
		configDir = GinkgoT().TempDir()

		srv = mockbackend.NewServer(mockbackend.Config{}, nil)
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		go func() {
			_ = srv.Serve(ln)
		}()

		endpoint = "http://" + ln.Addr().String()
		client = backend.NewClient(endpoint)
		Eventually(func() error {
			_, err := client.Ping(ctx)
			return err
		}).Should(Succeed())
	})

	AfterEach(func() {
		Expect(srv.Shutdown()).To(Succeed())
	})

	It("signs in and opens a new conversation", func() {
		cmd := withRootFlags(logincmder.NewLoginCmd(), "ana", "--api-endpoint", endpoint)
		Expect(cmd.Execute()).To(Succeed())

		state, err := dotdir.NewManager().LoadSession(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).NotTo(BeNil())
		Expect(state.UserID).To(Equal("ana"))

		conversations, err := client.Conversations(ctx, "ana")
		Expect(err).NotTo(HaveOccurred())
		Expect(conversations).To(HaveLen(1))
		Expect(state.ConversationID).To(Equal(conversations[0].ConversationID))
	})

	It("reopens the most recent conversation", func() {
		_, err := client.NewConversation(ctx, "ana", "Vieja")
		Expect(err).NotTo(HaveOccurred())
		recent, err := client.NewConversation(ctx, "ana", "Reciente")
		Expect(err).NotTo(HaveOccurred())

		cmd := withRootFlags(logincmder.NewLoginCmd(), "ana", "--api-endpoint", endpoint)
		Expect(cmd.Execute()).To(Succeed())

		state, err := dotdir.NewManager().LoadSession(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state.ConversationID).To(Equal(recent))
	})

	It("requires a user name", func() {
		cmd := withRootFlags(logincmder.NewLoginCmd(), "--api-endpoint", endpoint)
		Expect(cmd.Execute()).To(HaveOccurred())
	})

	It("signs out", func() {
		Expect(dotdir.NewManager().SaveSession(&dotdir.SessionState{UserID: "ana", ConversationID: "c1"}, configDir)).To(Succeed())

		cmd := withRootFlags(logincmder.NewLogoutCmd())
		Expect(cmd.Execute()).To(Succeed())

		state, err := dotdir.NewManager().LoadSession(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(state).To(BeNil())
	})

	It("reports the backend in whoami", func() {
		Expect(dotdir.NewManager().SaveSession(&dotdir.SessionState{UserID: "ana"}, configDir)).To(Succeed())

		cmd := withRootFlags(logincmder.NewWhoamiCmd(), "--api-endpoint", endpoint)
		Expect(cmd.Execute()).To(Succeed())
	})

	It("fails whoami when the backend is down", func() {
		cmd := withRootFlags(logincmder.NewWhoamiCmd(), "--api-endpoint", "http://127.0.0.1:1")
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("backend not reachable")))
	})
})
