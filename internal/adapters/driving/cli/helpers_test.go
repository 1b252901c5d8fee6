package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/services"
	"github.com/custodia-labs/markscan/internal/extraction"
)

const (
	aliceText   = "Student Name: Alice Sharma T.U. Reg No: 7-2-123-45-2018 Grade: A Result: Pass"
	partialText = "Student Name: Nobody Known Result: Pass"
)

// stubRecognizer returns text by filename.
type stubRecognizer struct {
	byFile map[string]string
}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(_ context.Context, img domain.Image) (string, error) {
	return s.byFile[img.Filename], nil
}

// testStores exposes the stores behind the test services.
type testStores struct {
	records   *memory.RecordStore
	semesters *memory.SemesterStore
	config    *memory.ConfigStore
}

var stores *testStores

// setupTestServices wires real services over in-memory stores and returns
// a cleanup function that clears them and resets every flag.
func setupTestServices() func() {
	records := memory.NewRecordStore()
	semesterStore := memory.NewSemesterStore()
	sessions := memory.NewSessionStore()
	config := memory.NewConfigStore()
	activity := services.NewActivityService(20, records, "stub")
	admins := services.NewAdminService(memory.NewAdminStore(), activity, bcrypt.MinCost)

	recognizer := &stubRecognizer{byFile: map[string]string{
		"alice.png":   aliceText,
		"partial.png": partialText,
	}}

	stores = &testStores{records: records, semesters: semesterStore, config: config}
	recordService = services.NewRecordService(recognizer, records,
		services.WithSemesterStore(semesterStore),
		services.WithImageStore(memory.NewImageStore()),
		services.WithActivitySink(activity))
	searchService = services.NewSearchService(records, activity)
	adminService = admins
	authService = services.NewAuthService(admins, sessions, activity, 0, 100)
	semesterService = services.NewSemesterService(semesterStore, records, activity)
	activityService = activity
	settingsService = services.NewSettingsService(config)
	sessionStore = sessions
	extractor = extraction.New()
	appSettings = nil

	return func() {
		recordService = nil
		searchService = nil
		adminService = nil
		authService = nil
		semesterService = nil
		activityService = nil
		settingsService = nil
		sessionStore = nil
		extractor = nil
		appSettings = nil
		stores = nil
		resetFlags(rootCmd)
	}
}

// resetFlags restores every flag in the tree to its default value.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// storeRecord stores the alice.png scan through the record service.
func storeRecord(t *testing.T) *domain.StudentRecord {
	t.Helper()
	record, err := recordService.Process(context.Background(), domain.Upload{
		Image:      domain.Image{Filename: "alice.png", Data: []byte("scan")},
		UploadedBy: "registrar",
	})
	require.NoError(t, err)
	return record
}
