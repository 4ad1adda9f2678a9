package relay

import "sync"

// Directory is the process-wide mapping from Slack channel id to the
// relay-managed channel name (the irc-<nick> form). It is owned by the
// engine: the IRC handler writes, the Slack handler reads. Entries are never
// expired; a channel archived externally simply stops round-tripping through
// lookup on the Slack side and its events fall out via the unrecognized
// channel path.
type Directory struct {
	mu   sync.RWMutex
	byID map[string]string
}

func NewDirectory() *Directory {
	return &Directory{byID: make(map[string]string)}
}

// Bind records or overwrites the mapping for a channel id.
func (d *Directory) Bind(channelID, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[channelID] = name
}

// Lookup returns the bound name for a channel id.
func (d *Directory) Lookup(channelID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.byID[channelID]
	return name, ok
}

// Replace swaps in a whole mapping, discarding previous entries. Used once at
// startup with the result of the channel binding pass.
func (d *Directory) Replace(m map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID = make(map[string]string, len(m))
	for id, name := range m {
		d.byID[id] = name
	}
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}
