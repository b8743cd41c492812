//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/locationiq"
	"github.com/couchcryptid/locationiq-geocoder/internal/adapter/transport"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.5.0"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker for the duration of the test.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, kafkaImage, tckafka.WithClusterID("locationiq-geocoder-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

const searchDoc = `<?xml version="1.0" encoding="UTF-8" ?>
<searchresults timestamp="Thu, 26 Apr 24 15:10:00 +0000" querystring="%s">
  <place place_id="1" lat="48.8566" lon="2.3522" boundingbox="48.8155,48.9021,2.2241,2.4697" display_name="Paris, France">
    <city>Paris</city>
    <state>Île-de-France</state>
    <country>France</country>
    <country_code>fr</country_code>
  </place>
</searchresults>`

const reverseDoc = `<?xml version="1.0" encoding="UTF-8" ?>
<reversegeocode timestamp="Thu, 26 Apr 24 15:10:00 +0000">
  <result lat="30.2672" lon="-97.7431">Congress Avenue, Austin, Texas</result>
  <addressparts>
    <road>Congress Avenue</road>
    <city>Austin</city>
    <county>Travis County</county>
    <state>Texas</state>
    <postcode>78701</postcode>
    <country>United States of America</country>
    <country_code>us</country_code>
  </addressparts>
</reversegeocode>`

// fakeLocationIQ serves canned xmlv1.1 documents for both endpoints.
// A query of "nowhere" produces an empty result set.
func fakeLocationIQ(t *testing.T) *locationiq.Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/search.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "nowhere" {
			fmt.Fprint(w, `<searchresults querystring="nowhere"></searchresults>`)
			return
		}
		fmt.Fprintf(w, searchDoc, q)
	})
	mux.HandleFunc("GET /v1/reverse.php", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, reverseDoc)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	fetcher := transport.New(5*time.Second, discardLogger())
	p, err := locationiq.New(fetcher, "integration-key", locationiq.RegionUS,
		locationiq.WithBaseURL(srv.URL+"/v1"),
		locationiq.WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	return p
}
