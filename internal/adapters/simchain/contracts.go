package simchain

import (
	"slices"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-upgrades/internal/adapters/abi/bindings"
)

var (
	proxyAdminABI = mustParse(&bindings.ProxyAdminMetaData)
	upgraderABI   = mustParse(&bindings.SetUpgraderMetaData)
	registryABI   = mustParse(&bindings.VersionRegistryMetaData)
)

func mustParse(meta interface{ ParseABI() (*abi.ABI, error) }) *abi.ABI {
	parsed, err := meta.ParseABI()
	if err != nil {
		panic(err)
	}
	return parsed
}

// method decodes the selector and arguments of data against parsed
func method(parsed *abi.ABI, data []byte) (*abi.Method, []any, error) {
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, revert("decode %s: %v", m.Name, err)
	}
	return m, args, nil
}

// Storage is the contract state behind a proxy. Enumerable sets are kept per
// encoding so both representations can be inspected.
type Storage struct {
	Owner   common.Address
	Legacy  map[common.Hash][]common.Address
	Current map[common.Hash][]common.Address
	Values  map[string][]byte
	// Chunks records the key count of every applied upgradeChunk call
	Chunks   []int
	Finished bool
}

func newStorage() *Storage {
	return &Storage{
		Legacy:  make(map[common.Hash][]common.Address),
		Current: make(map[common.Hash][]common.Address),
		Values:  make(map[string][]byte),
	}
}

func (s *Storage) clone() *Storage {
	out := newStorage()
	out.Owner = s.Owner
	out.Finished = s.Finished
	out.Chunks = slices.Clone(s.Chunks)
	for k, v := range s.Legacy {
		out.Legacy[k] = slices.Clone(v)
	}
	for k, v := range s.Current {
		out.Current[k] = slices.Clone(v)
	}
	for k, v := range s.Values {
		out.Values[k] = slices.Clone(v)
	}
	return out
}

func addMember(set []common.Address, member common.Address) []common.Address {
	if slices.Contains(set, member) {
		return set
	}
	return append(set, member)
}

type env struct {
	caller common.Address
	self   common.Address
}

// Handler implements one extra function of an implementation
type Handler func(caller common.Address, st *Storage, args []byte) ([]byte, error)

// UpgradeSet is a set rewritten by an upgrader implementation
type UpgradeSet struct {
	Slot   common.Hash
	PerKey bool
}

// Implementation is simulated contract logic executed against proxy storage.
// Every implementation answers owner().
type Implementation struct {
	Name string
	// OwnerOverride makes owner() report a fixed address instead of the stored owner
	OwnerOverride *common.Address
	// Upgrader enables the chunked set upgrader interface
	Upgrader *UpgraderLogic
	// Handlers are keyed by canonical signature, e.g. "initialize(uint256)"
	Handlers map[string]Handler
}

// UpgraderLogic configures the chunked set upgrader behaviour
type UpgraderLogic struct {
	Sets []UpgradeSet
	// MaxChunk reverts upgradeChunk calls with more keys, when positive
	MaxChunk int
}

func (impl *Implementation) exec(e env, st *Storage, data []byte) ([]byte, error) {
	sel := data[:4]
	if slices.Equal(sel, proxyAdminABI.Methods["owner"].ID) {
		owner := st.Owner
		if impl.OwnerOverride != nil {
			owner = *impl.OwnerOverride
		}
		return proxyAdminABI.Methods["owner"].Outputs.Pack(owner)
	}
	for sig, h := range impl.Handlers {
		if slices.Equal(sel, crypto.Keccak256([]byte(sig))[:4]) {
			return h(e.caller, st, data[4:])
		}
	}
	if impl.Upgrader != nil {
		if m, err := upgraderABI.MethodById(sel); err == nil {
			return impl.Upgrader.exec(e, st, m, data)
		}
	}
	return nil, revert("%s: unknown selector %x", impl.Name, sel)
}

func (u *UpgraderLogic) exec(e env, st *Storage, m *abi.Method, data []byte) ([]byte, error) {
	_, args, err := method(upgraderABI, data)
	if err != nil {
		return nil, err
	}
	switch m.Name {
	case "upgradeChunk":
		if e.caller != st.Owner {
			return nil, revert("upgradeChunk: caller is not the owner")
		}
		if st.Finished {
			return nil, revert("upgradeChunk: upgrade already finished")
		}
		keys := args[0].([]common.Address)
		if u.MaxChunk > 0 && len(keys) > u.MaxChunk {
			return nil, revert("upgradeChunk: %d keys exceeds limit %d", len(keys), u.MaxChunk)
		}
		for _, key := range keys {
			u.migrateKey(st, key)
		}
		st.Chunks = append(st.Chunks, len(keys))
		return nil, nil
	case "upgradeFinished":
		if e.caller != st.Owner {
			return nil, revert("upgradeFinished: caller is not the owner")
		}
		if st.Finished {
			return nil, revert("upgradeFinished: already finished")
		}
		st.Finished = true
		return nil, nil
	case "legacyMembers":
		return m.Outputs.Pack(membersOrEmpty(st.Legacy[common.Hash(args[0].([32]byte))]))
	case "members":
		return m.Outputs.Pack(membersOrEmpty(st.Current[common.Hash(args[0].([32]byte))]))
	case "legacyContains":
		return m.Outputs.Pack(slices.Contains(st.Legacy[common.Hash(args[0].([32]byte))], args[1].(common.Address)))
	case "contains":
		return m.Outputs.Pack(slices.Contains(st.Current[common.Hash(args[0].([32]byte))], args[1].(common.Address)))
	}
	return nil, revert("upgrader: unsupported %s", m.Name)
}

func (u *UpgraderLogic) migrateKey(st *Storage, key common.Address) {
	for _, set := range u.Sets {
		if set.PerKey {
			slot := crypto.Keccak256Hash(common.BytesToHash(key.Bytes()).Bytes(), set.Slot.Bytes())
			for _, m := range st.Legacy[slot] {
				st.Current[slot] = addMember(st.Current[slot], m)
			}
			continue
		}
		if slices.Contains(st.Legacy[set.Slot], key) {
			st.Current[set.Slot] = addMember(st.Current[set.Slot], key)
		}
	}
}

func membersOrEmpty(m []common.Address) []common.Address {
	if m == nil {
		return []common.Address{}
	}
	return m
}

func (c *Chain) execAdmin(caller, admin common.Address, data []byte) ([]byte, error) {
	m, args, err := method(proxyAdminABI, data)
	if err != nil {
		return nil, revert("proxy admin: %v", err)
	}
	state := c.admins[admin]

	proxyArg := func() (*proxyState, error) {
		proxy := args[0].(common.Address)
		p, ok := c.proxies[proxy]
		if !ok || p.admin != admin {
			return nil, revert("%s is not administered by %s", proxy.Hex(), admin.Hex())
		}
		return p, nil
	}

	switch m.Name {
	case "owner":
		return m.Outputs.Pack(state.owner)
	case "getProxyAdmin":
		p, err := proxyArg()
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(p.admin)
	case "getProxyImplementation":
		p, err := proxyArg()
		if err != nil {
			return nil, err
		}
		return m.Outputs.Pack(p.implementation)
	case "upgrade", "upgradeAndCall":
		if caller != state.owner {
			return nil, revert("Ownable: caller is not the owner")
		}
		p, err := proxyArg()
		if err != nil {
			return nil, err
		}
		impl := args[1].(common.Address)
		if _, ok := c.impls[impl]; !ok {
			return nil, revert("ERC1967: new implementation %s is not a contract", impl.Hex())
		}
		p.implementation = impl
		if m.Name == "upgradeAndCall" {
			if _, err := c.exec(admin, args[0].(common.Address), args[2].([]byte)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	return nil, revert("proxy admin: unsupported %s", m.Name)
}

func (c *Chain) execRegistry(registry common.Address, data []byte) ([]byte, error) {
	m, args, err := method(registryABI, data)
	if err != nil {
		return nil, revert("version registry: %v", err)
	}
	switch m.Name {
	case "protocolVersion":
		return m.Outputs.Pack(c.registries[registry].version)
	case "setProtocolVersion":
		c.registries[registry].version = args[0].(string)
		return nil, nil
	}
	return nil, revert("version registry: unsupported %s", m.Name)
}
