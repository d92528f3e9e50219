package subscription_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"domainwatch/internal/subscription"
	"domainwatch/pkg/logger"
	"domainwatch/pkg/metrics"
	"domainwatch/pkg/notifier"
	mocknotifier "domainwatch/pkg/notifier/mock"
	"domainwatch/pkg/serrors"
	"domainwatch/pkg/storage"
	"domainwatch/pkg/storage/jsonfile"
	mockstorage "domainwatch/pkg/storage/mock"
	"domainwatch/pkg/validator"
	mockvalidator "domainwatch/pkg/validator/mock"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	examplePending = `{"abc123":{"domain":"example.com","email":"a@example.com",` +
		`"visitor_pre_register_ip":"1.2.3.4","pre_add_date":"2024-01-01"}}`
	exampleConfirmed = `{"abc123":{"domain":"example.com","email":"a@example.com","errors":0,` +
		`"visitor_pre_register_ip":"1.2.3.4","pre_add_date":"2024-01-01",` +
		`"visitor_confirm_ip":"5.6.7.8","confirm_date":1704164645}}`
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) //nolint: gochecknoglobals

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	os.Exit(m.Run())
}

type fixture struct {
	dir           string
	pendingPath   string
	confirmedPath string
	validator     *mockvalidator.MockValidator
	mailer        *mocknotifier.MockMailer
	metrics       *metrics.Subscription
	deps          subscription.Deps
}

func newFixture(t *testing.T, pending, confirmed string) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{dir: t.TempDir()}
	f.pendingPath = filepath.Join(f.dir, "pre_checks.json")
	f.confirmedPath = filepath.Join(f.dir, "checks.json")
	if pending != "" {
		require.NoError(t, os.WriteFile(f.pendingPath, []byte(pending), 0o644))
	}
	if confirmed != "" {
		require.NoError(t, os.WriteFile(f.confirmedPath, []byte(confirmed), 0o644))
	}

	f.validator = mockvalidator.NewMockValidator(ctrl)
	f.mailer = mocknotifier.NewMockMailer(ctrl)
	f.metrics = metrics.NewSubscription(prometheus.NewRegistry())
	f.deps = subscription.Deps{
		Pending:   jsonfile.New(jsonfile.Options{Path: f.pendingPath}),
		Confirmed: jsonfile.New(jsonfile.Options{Path: f.confirmedPath}),
		Validator: f.validator,
		Mailer:    f.mailer,
		Metrics:   f.metrics,
		Now:       func() time.Time { return fixedNow },
	}

	return f
}

func (f *fixture) service() subscription.Service {
	return subscription.New(f.deps, subscription.Options{
		Title:    "Certificate Expiry Monitor",
		Domain:   "certs.example.org",
		Link:     "certs.example.org",
		Location: time.UTC,
	})
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func (f *fixture) outcomes(operation, outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Operations.WithLabelValues(operation, outcome))
}

func TestConfirm_Success(t *testing.T) {
	f := newFixture(t, examplePending, `[]`)
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})

	var sent notifier.Message
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg notifier.Message) error {
		sent = msg

		return nil
	})

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.NoError(t, res.Err())
	require.True(t, res.OK())
	require.Equal(t, []string{}, res.Errors)
	require.Equal(t, []bool{true}, res.Success)

	require.JSONEq(t, exampleConfirmed, f.read(t, f.confirmedPath))
	require.JSONEq(t, `{}`, f.read(t, f.pendingPath))

	require.Equal(t, "a@example.com", sent.To)
	require.Equal(t, "Certificate Expiry Monitor subscription confirmed for example.com.", sent.Subject)
	require.Equal(t, map[string]string{
		notifier.HeaderFrom:      "noreply@certs.example.org",
		notifier.HeaderReplyTo:   "noreply@certs.example.org",
		notifier.HeaderVisitorIP: "5.6.7.8",
	}, sent.Headers)
	require.Contains(t, sent.Body, "Domain: example.com\n")
	require.Contains(t, sent.Body, "IP subscription confirmed from: 5.6.7.8\n")
	require.Contains(t, sent.Body, "Date subscribed confirmed: 2024-01-02 03:04:05 UTC\n")
	require.Contains(t, sent.Body, "https://certs.example.org/unsubscribe.php?id=abc123")

	require.InDelta(t, 1, f.outcomes(metrics.OperationConfirm, metrics.OutcomeSuccess), 0)
}

func TestConfirm_KeepsOtherEntries(t *testing.T) {
	pending := `{"other":{"domain":"other.example","email":"o@other.example"},` +
		`"abc123":{"domain":"example.com","email":"a@example.com","pre_add_date":1704067200}}`
	confirmed := `{"old":{"domain":"old.example","email":"x@old.example","errors":4,"custom":true}}`
	f := newFixture(t, pending, confirmed)
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.True(t, res.OK())

	require.JSONEq(t, `{"other":{"domain":"other.example","email":"o@other.example"}}`, f.read(t, f.pendingPath))
	require.JSONEq(t, `{"old":{"domain":"old.example","email":"x@old.example","errors":4,"custom":true},`+
		`"abc123":{"domain":"example.com","email":"a@example.com","errors":0,"visitor_pre_register_ip":"",`+
		`"pre_add_date":1704067200,"visitor_confirm_ip":"5.6.7.8","confirm_date":1704164645}}`,
		f.read(t, f.confirmedPath))
}

func TestConfirm_NotFound(t *testing.T) {
	for name, pending := range map[string]string{
		"absent":    `{"zzz":{"domain":"example.com","email":"a@example.com"}}`,
		"malformed": `{"abc123":"garbage"}`,
		"no email":  `{"abc123":{"domain":"example.com"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, pending, `{}`)

			res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
			require.ErrorIs(t, res.Err(), serrors.ErrRecordNotFound)
			require.Equal(t, []string{"Can't find record in database for: abc123"}, res.Errors)
			require.Equal(t, []bool{}, res.Success)

			require.Equal(t, pending, f.read(t, f.pendingPath))
			require.Equal(t, `{}`, f.read(t, f.confirmedPath))
		})
	}
}

func TestConfirm_NotFoundEscapesID(t *testing.T) {
	f := newFixture(t, `{}`, `{}`)

	res := f.service().Confirm(context.Background(), `<script>"x"</script>`, "5.6.7.8")
	require.Equal(t, []string{"Can't find record in database for: &lt;script&gt;&#34;x&#34;&lt;/script&gt;"}, res.Errors)
}

func TestConfirm_Duplicate(t *testing.T) {
	cases := map[string]string{
		"same combo under another id": `{"zzz":{"domain":"example.com","email":"a@example.com","errors":0}}`,
		"same id":                     `{"abc123":{"domain":"other.example","email":"b@other.example"}}`,
		"malformed entry under id":    `{"abc123":42}`,
	}

	for name, confirmed := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, examplePending, confirmed)

			res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
			require.ErrorIs(t, res.Err(), serrors.ErrDuplicateRecord)
			require.Equal(t, []string{"Domain/email combo for example.com already exists."}, res.Errors)

			require.Equal(t, examplePending, f.read(t, f.pendingPath))
			require.Equal(t, confirmed, f.read(t, f.confirmedPath))
			require.InDelta(t, 1, f.outcomes(metrics.OperationConfirm, "duplicate_record"), 0)
		})
	}
}

func TestConfirm_DifferentEmailIsNotDuplicate(t *testing.T) {
	f := newFixture(t, examplePending,
		`{"zzz":{"domain":"example.com","email":"someone-else@example.com"},"bad":"x"}`)
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.True(t, res.OK(), res.Errors)
}

func TestConfirm_ValidationErrors(t *testing.T) {
	f := newFixture(t, examplePending, `{}`)
	msgs := []string{"Can't resolve example.com.", "Can't connect to <b>example.com</b> on port 443."}
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{Errors: msgs})

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrValidation)
	require.Equal(t, msgs, res.Errors)

	require.Equal(t, examplePending, f.read(t, f.pendingPath))
	require.Equal(t, `{}`, f.read(t, f.confirmedPath))
}

func TestConfirm_ConfirmTwice(t *testing.T) {
	f := newFixture(t, examplePending, `{}`)
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	svc := f.service()

	require.True(t, svc.Confirm(context.Background(), "abc123", "5.6.7.8").OK())

	res := svc.Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrRecordNotFound)
	require.JSONEq(t, exampleConfirmed, f.read(t, f.confirmedPath))
}

func TestConfirm_UnreadableStore(t *testing.T) {
	f := newFixture(t, "", `{}`)
	svc := f.service()

	first := svc.Confirm(context.Background(), "abc123", "5.6.7.8")
	second := svc.Confirm(context.Background(), "abc123", "5.6.7.8")
	for _, res := range []subscription.Result{first, second} {
		require.ErrorIs(t, res.Err(), serrors.ErrStoreRead)
		require.Equal(t, []string{"Can't open database."}, res.Errors)
	}
	require.Equal(t, first.Errors, second.Errors)

	_, err := os.Stat(f.pendingPath)
	require.ErrorIs(t, err, os.ErrNotExist)
	require.Equal(t, `{}`, f.read(t, f.confirmedPath))

	// confirmed store missing
	f = newFixture(t, examplePending, "")
	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreRead)
	require.Equal(t, examplePending, f.read(t, f.pendingPath))
}

func TestConfirm_MalformedStore(t *testing.T) {
	f := newFixture(t, `{"abc123":`, `{}`)

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreParse)
	require.Len(t, res.Errors, 1)
	require.Regexp(t, `^Can't read database: \S`, res.Errors[0])

	f = newFixture(t, examplePending, `"just a string"`)
	res = f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreParse)
	require.Equal(t, []string{"Can't read database: document is string, object expected"}, res.Errors)
	require.Equal(t, examplePending, f.read(t, f.pendingPath))
}

func TestConfirm_ConfirmedWriteFails(t *testing.T) {
	f := newFixture(t, examplePending, "")
	confirmed := mockstorage.NewMockDocumentStore(gomock.NewController(t))
	confirmed.EXPECT().Load(gomock.Any()).Return(storage.NewDocument(), nil)
	confirmed.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	f.deps.Confirmed = confirmed
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreWrite)
	require.Equal(t, []string{"Can't write database."}, res.Errors)
	require.Equal(t, examplePending, f.read(t, f.pendingPath))
}

func TestConfirm_PendingWriteFails(t *testing.T) {
	f := newFixture(t, "", `{}`)
	pending := mockstorage.NewMockDocumentStore(gomock.NewController(t))
	doc, err := storage.DecodeDocument([]byte(examplePending))
	require.NoError(t, err)
	pending.EXPECT().Load(gomock.Any()).Return(doc, nil)
	pending.EXPECT().Save(gomock.Any(), gomock.Any()).Return(serrors.KindOnly(serrors.ErrStoreWrite))
	f.deps.Pending = pending
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreWrite)
	require.Equal(t, []string{"Can't write database."}, res.Errors)

	// the confirmed store is already committed
	require.JSONEq(t, exampleConfirmed, f.read(t, f.confirmedPath))
}

func TestConfirm_MailFails(t *testing.T) {
	f := newFixture(t, examplePending, `{}`)
	f.validator.EXPECT().ValidateDomains(gomock.Any(), "example.com").Return(validator.Report{})
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("relay denied"))

	res := f.service().Confirm(context.Background(), "abc123", "5.6.7.8")
	require.ErrorIs(t, res.Err(), serrors.ErrNotification)
	require.Equal(t, []string{"Can't send email."}, res.Errors)

	require.JSONEq(t, exampleConfirmed, f.read(t, f.confirmedPath))
	require.JSONEq(t, `{}`, f.read(t, f.pendingPath))
	require.InDelta(t, 1, f.outcomes(metrics.OperationConfirm, "notification"), 0)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t, `{}`, exampleConfirmed)

	var sent notifier.Message
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg notifier.Message) error {
		sent = msg

		return nil
	})

	svc := f.service()
	res := svc.Unsubscribe(context.Background(), "abc123", "9.9.9.9")
	require.True(t, res.OK(), res.Errors)
	require.JSONEq(t, `{}`, f.read(t, f.confirmedPath))
	require.Equal(t, "Certificate Expiry Monitor subscription removed for example.com.", sent.Subject)
	require.Equal(t, "a@example.com", sent.To)
	require.Equal(t, "9.9.9.9", sent.Headers[notifier.HeaderVisitorIP])

	res = svc.Unsubscribe(context.Background(), "abc123", "9.9.9.9")
	require.ErrorIs(t, res.Err(), serrors.ErrRecordNotFound)
	require.Equal(t, []string{"Can't find record in database for: abc123"}, res.Errors)
	require.InDelta(t, 1, f.outcomes(metrics.OperationUnsubscribe, metrics.OutcomeSuccess), 0)
	require.InDelta(t, 1, f.outcomes(metrics.OperationUnsubscribe, "record_not_found"), 0)
}

func TestUnsubscribe_Failures(t *testing.T) {
	f := newFixture(t, `{}`, "")
	res := f.service().Unsubscribe(context.Background(), "abc123", "9.9.9.9")
	require.ErrorIs(t, res.Err(), serrors.ErrStoreRead)

	f = newFixture(t, `{}`, `{"abc123":[]}`)
	res = f.service().Unsubscribe(context.Background(), "abc123", "9.9.9.9")
	require.ErrorIs(t, res.Err(), serrors.ErrRecordNotFound)
	require.Equal(t, `{"abc123":[]}`, f.read(t, f.confirmedPath))

	f = newFixture(t, `{}`, exampleConfirmed)
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("relay denied"))
	res = f.service().Unsubscribe(context.Background(), "abc123", "9.9.9.9")
	require.ErrorIs(t, res.Err(), serrors.ErrNotification)
	require.JSONEq(t, `{}`, f.read(t, f.confirmedPath))
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(subscription.Succeeded())
	require.NoError(t, err)
	require.Equal(t, `{"errors":[],"success":[true]}`, string(data))

	data, err = json.Marshal(subscription.Failed(serrors.KindOnly(serrors.ErrStoreRead), "Can't open database."))
	require.NoError(t, err)
	require.Equal(t, `{"errors":["Can't open database."],"success":[]}`, string(data))

	data, err = json.Marshal(subscription.Result{})
	require.NoError(t, err)
	require.Equal(t, `{"errors":[],"success":[]}`, string(data))
}
