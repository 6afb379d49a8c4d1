package db

import (
	"fmt"
	"strconv"

	"github.com/shhawkins/chord-wheel-writer/constants"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// InstrumentMetadata is a catalog row describing where an instrument's
// reference samples live. SampleKeys maps MIDI reference notes to WAV
// filenames under the sample dir.
type InstrumentMetadata struct {
	ID          string
	DisplayName string
	SampleKeys  map[uint8]string
}

// GetInstrumentMetadatas batch-fetches catalog rows. DynamoDB caps
// BatchGetItem at a small page, so callers pass at most 10 ids.
func GetInstrumentMetadatas(ids []string) (map[string]InstrumentMetadata, error) {
	if len(ids) > 10 {
		return nil, fmt.Errorf("at most 10 instrument ids per batch, got %v", len(ids))
	}

	res := make(map[string]InstrumentMetadata)
	if len(ids) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(id)},
		})
	}

	cfg := &aws.Config{}
	if endpoint := constants.GetInstrumentDBEndpoint(); endpoint != "" {
		cfg.Region = aws.String("localhost")
		cfg.Endpoint = &endpoint
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating DynamoDB session: %w", err)
	}

	table := constants.GetInstrumentTableName()
	client := dynamodb.New(sess)
	input := &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			table: {Keys: keys},
		},
	}
	dbres, err := client.BatchGetItem(input)
	if err != nil {
		return nil, fmt.Errorf("fetching instrument metadata: %w", err)
	}

	for _, v := range dbres.Responses[table] {
		var m InstrumentMetadata
		m.ID = *v["PK"].S
		if v["DisplayName"] != nil && v["DisplayName"].S != nil {
			m.DisplayName = *v["DisplayName"].S
		}
		if v["Samples"] != nil && v["Samples"].M != nil {
			m.SampleKeys = make(map[uint8]string)
			for note, av := range v["Samples"].M {
				n, err := strconv.ParseUint(note, 10, 8)
				if err != nil || av.S == nil {
					continue
				}
				m.SampleKeys[uint8(n)] = *av.S
			}
		}
		res[m.ID] = m
	}

	return res, nil
}
