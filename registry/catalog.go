package registry

import (
	"github.com/shhawkins/chord-wheel-writer/db"
)

// LoadFromCatalog pulls instrument rows from the catalog table and
// starts an async sample load for each one that has sample keys. Rows
// without samples register as synth instruments immediately. The
// returned channels close as each instrument becomes ready.
func (r *Registry) LoadFromCatalog(ids []string) (map[string]<-chan struct{}, error) {
	metas, err := db.GetInstrumentMetadatas(ids)
	if err != nil {
		return nil, err
	}

	ready := make(map[string]<-chan struct{}, len(metas))
	for id, meta := range metas {
		if len(meta.SampleKeys) == 0 {
			r.Register(&Definition{
				ID:          id,
				DisplayName: meta.DisplayName,
				Synth:       DefaultSynthParams(),
			})
			continue
		}
		ready[id] = r.LoadSampleInstrument(id, meta.DisplayName, meta.SampleKeys)
	}
	return ready, nil
}
