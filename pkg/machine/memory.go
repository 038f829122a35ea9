package machine

import "encoding/binary"

// checkRange returns an AddressError unless [addr, addr+size) lies in user
// memory.
func (m *Machine) checkRange(addr, size int) error {
	if addr < 0 || size < 0 || addr > len(m.mem) || size > len(m.mem)-addr {
		return &AddressError{Addr: addr, Size: size}
	}
	return nil
}

// CheckRange returns an AddressError unless [addr, addr+size) lies in user
// memory.
func (m *Machine) CheckRange(addr, size int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkRange(addr, size)
}

// ReadMem reads a 1, 2 or 4 byte little-endian value at addr.
func (m *Machine) ReadMem(addr, size int) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRange(addr, size); err != nil {
		return 0, err
	}
	b := m.mem[addr : addr+size]
	switch size {
	case 1:
		return int32(b[0]), nil
	case 2:
		return int32(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return int32(binary.LittleEndian.Uint32(b)), nil
	default:
		return 0, ErrBadSize
	}
}

// WriteMem writes a 1, 2 or 4 byte little-endian value at addr.
func (m *Machine) WriteMem(addr, size int, v int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRange(addr, size); err != nil {
		return err
	}
	b := m.mem[addr : addr+size]
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		return ErrBadSize
	}
	return nil
}

// UserToKernel copies a NUL-terminated string of at most limit bytes out of
// user memory starting at addr. The copy stops at the first NUL or after
// limit bytes. A string that runs off the end of user memory first is an
// AddressError.
func (m *Machine) UserToKernel(addr, limit int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRange(addr, 1); err != nil {
		return "", err
	}
	end := addr
	for end-addr < limit && m.mem[end] != 0 {
		end++
		if end == len(m.mem) {
			if end-addr < limit {
				return "", &AddressError{Addr: addr, Size: end - addr + 1}
			}
			break
		}
	}
	return string(m.mem[addr:end]), nil
}

// ReadBytes copies n raw bytes out of user memory.
func (m *Machine) ReadBytes(addr, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRange(addr, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, m.mem[addr:addr+n])
	return out, nil
}

// KernelToUser copies buf into user memory at addr and returns the number
// of bytes written. Nothing is written if the range does not fit.
func (m *Machine) KernelToUser(addr int, buf []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkRange(addr, len(buf)); err != nil {
		return 0, err
	}
	return copy(m.mem[addr:], buf), nil
}
