package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionCurrent = 1

const (
	flagInitialized   = 1 << 0
	flagConnected     = 1 << 1
	flagAuthenticated = 1 << 2
)

// Encode serializes a record into the versioned binary layout.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)
	buf.WriteByte(r.Step)

	if err := binary.Write(&buf, binary.BigEndian, r.Epoch); err != nil {
		return nil, err
	}

	var flags byte
	if r.Initialized {
		flags |= flagInitialized
	}
	if r.Connected {
		flags |= flagConnected
	}
	if r.Authenticated {
		flags |= flagAuthenticated
	}
	buf.WriteByte(flags)

	for _, s := range []string{
		r.JourneyID, r.ConsentHandleID, r.UserID, r.LoginOtpRef, r.LinkingOtpRef,
	} {
		if err := writeString(&buf, s); err != nil {
			return nil, err
		}
	}

	if err := writeFIPs(&buf, r.AvailableFIPs); err != nil {
		return nil, err
	}

	if r.SelectedFIP == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		if err := writeFIP(&buf, *r.SelectedFIP); err != nil {
			return nil, err
		}
	}

	if r.FipDetails == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		if err := writeDetails(&buf, r.FipDetails); err != nil {
			return nil, err
		}
	}

	if err := writeAccounts(&buf, r.Discovered); err != nil {
		return nil, err
	}
	if err := writeAccounts(&buf, r.ToLink); err != nil {
		return nil, err
	}
	if err := writeLinked(&buf, r.Linked); err != nil {
		return nil, err
	}

	if r.Consent == nil {
		buf.WriteByte(0)
	} else {
		buf.WriteByte(1)
		if err := writeConsent(&buf, r.Consent); err != nil {
			return nil, err
		}
	}

	if err := writeStrings(&buf, r.ConsentLinkRefs); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.BigEndian, r.SavedAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a record. Unknown format versions are rejected.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent {
		return nil, errors.New("invalid snapshot record version")
	}

	r := &Record{}

	if r.Step, err = reader.ReadByte(); err != nil {
		return nil, err
	}

	if err = binary.Read(reader, binary.BigEndian, &r.Epoch); err != nil {
		return nil, err
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	r.Initialized = flags&flagInitialized != 0
	r.Connected = flags&flagConnected != 0
	r.Authenticated = flags&flagAuthenticated != 0

	for _, dst := range []*string{
		&r.JourneyID, &r.ConsentHandleID, &r.UserID, &r.LoginOtpRef, &r.LinkingOtpRef,
	} {
		if *dst, err = readString(reader); err != nil {
			return nil, err
		}
	}

	if r.AvailableFIPs, err = readFIPs(reader); err != nil {
		return nil, err
	}

	present, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if present == 1 {
		fip, err := readFIP(reader)
		if err != nil {
			return nil, err
		}
		r.SelectedFIP = &fip
	}

	if present, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if present == 1 {
		if r.FipDetails, err = readDetails(reader); err != nil {
			return nil, err
		}
	}

	if r.Discovered, err = readAccounts(reader); err != nil {
		return nil, err
	}
	if r.ToLink, err = readAccounts(reader); err != nil {
		return nil, err
	}
	if r.Linked, err = readLinked(reader); err != nil {
		return nil, err
	}

	if present, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if present == 1 {
		if r.Consent, err = readConsent(reader); err != nil {
			return nil, err
		}
	}

	if r.ConsentLinkRefs, err = readStrings(reader); err != nil {
		return nil, err
	}

	if err := binary.Read(reader, binary.BigEndian, &r.SavedAt); err != nil {
		return nil, err
	}

	return r, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > 65535 {
		return errors.New("snapshot string field too long")
	}
	if err := binary.Write(buf, binary.BigEndian, uint16(len(s))); err != nil {
		return err
	}
	buf.WriteString(s)
	return nil
}

func readString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

func writeCount(buf *bytes.Buffer, n int) error {
	if n > 65535 {
		return errors.New("snapshot list too long")
	}
	return binary.Write(buf, binary.BigEndian, uint16(n))
}

func readCount(reader *bytes.Reader) (int, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func writeStrings(buf *bytes.Buffer, values []string) error {
	if err := writeCount(buf, len(values)); err != nil {
		return err
	}
	for _, v := range values {
		if err := writeString(buf, v); err != nil {
			return err
		}
	}
	return nil
}

func readStrings(reader *bytes.Reader) ([]string, error) {
	n, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	values := make([]string, n)
	for i := range values {
		if values[i], err = readString(reader); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func writeFIP(buf *bytes.Buffer, f FIP) error {
	if err := writeString(buf, f.ID); err != nil {
		return err
	}
	if err := writeString(buf, f.Name); err != nil {
		return err
	}
	if f.Enabled {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	return writeStrings(buf, f.FITypes)
}

func readFIP(reader *bytes.Reader) (FIP, error) {
	var f FIP
	var err error
	if f.ID, err = readString(reader); err != nil {
		return f, err
	}
	if f.Name, err = readString(reader); err != nil {
		return f, err
	}
	enabled, err := reader.ReadByte()
	if err != nil {
		return f, err
	}
	f.Enabled = enabled == 1
	f.FITypes, err = readStrings(reader)
	return f, err
}

func writeFIPs(buf *bytes.Buffer, fips []FIP) error {
	if err := writeCount(buf, len(fips)); err != nil {
		return err
	}
	for _, f := range fips {
		if err := writeFIP(buf, f); err != nil {
			return err
		}
	}
	return nil
}

func readFIPs(reader *bytes.Reader) ([]FIP, error) {
	n, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	fips := make([]FIP, n)
	for i := range fips {
		if fips[i], err = readFIP(reader); err != nil {
			return nil, err
		}
	}
	return fips, nil
}

func writeDetails(buf *bytes.Buffer, d *Details) error {
	if err := writeString(buf, d.FipID); err != nil {
		return err
	}
	if err := writeString(buf, d.FipName); err != nil {
		return err
	}
	if err := writeCount(buf, len(d.TypeIdentifiers)); err != nil {
		return err
	}
	for _, ti := range d.TypeIdentifiers {
		if err := writeString(buf, ti.FIType); err != nil {
			return err
		}
		if err := writeCount(buf, len(ti.Identifiers)); err != nil {
			return err
		}
		for _, req := range ti.Identifiers {
			if err := writeString(buf, req.Category); err != nil {
				return err
			}
			if err := writeString(buf, req.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func readDetails(reader *bytes.Reader) (*Details, error) {
	d := &Details{}
	var err error
	if d.FipID, err = readString(reader); err != nil {
		return nil, err
	}
	if d.FipName, err = readString(reader); err != nil {
		return nil, err
	}
	n, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		var ti FITypeIdentifiers
		if ti.FIType, err = readString(reader); err != nil {
			return nil, err
		}
		m, err := readCount(reader)
		if err != nil {
			return nil, err
		}
		for j := 0; j < m; j++ {
			var req RequiredIdentifier
			if req.Category, err = readString(reader); err != nil {
				return nil, err
			}
			if req.Type, err = readString(reader); err != nil {
				return nil, err
			}
			ti.Identifiers = append(ti.Identifiers, req)
		}
		d.TypeIdentifiers = append(d.TypeIdentifiers, ti)
	}
	return d, nil
}

func writeAccounts(buf *bytes.Buffer, accounts []Account) error {
	if err := writeCount(buf, len(accounts)); err != nil {
		return err
	}
	for _, a := range accounts {
		for _, s := range []string{a.AccountRefNumber, a.MaskedAccNumber, a.AccType, a.FIType} {
			if err := writeString(buf, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func readAccounts(reader *bytes.Reader) ([]Account, error) {
	n, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	accounts := make([]Account, n)
	for i := range accounts {
		for _, dst := range []*string{
			&accounts[i].AccountRefNumber, &accounts[i].MaskedAccNumber,
			&accounts[i].AccType, &accounts[i].FIType,
		} {
			if *dst, err = readString(reader); err != nil {
				return nil, err
			}
		}
	}
	return accounts, nil
}

func writeLinked(buf *bytes.Buffer, accounts []LinkedAccount) error {
	if err := writeCount(buf, len(accounts)); err != nil {
		return err
	}
	for _, a := range accounts {
		for _, s := range []string{
			a.LinkRefNumber, a.AccountRefNumber, a.MaskedAccNumber,
			a.FipID, a.FipName, a.AccType, a.FIType,
		} {
			if err := writeString(buf, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func readLinked(reader *bytes.Reader) ([]LinkedAccount, error) {
	n, err := readCount(reader)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	accounts := make([]LinkedAccount, n)
	for i := range accounts {
		for _, dst := range []*string{
			&accounts[i].LinkRefNumber, &accounts[i].AccountRefNumber,
			&accounts[i].MaskedAccNumber, &accounts[i].FipID,
			&accounts[i].FipName, &accounts[i].AccType, &accounts[i].FIType,
		} {
			if *dst, err = readString(reader); err != nil {
				return nil, err
			}
		}
	}
	return accounts, nil
}

func writeConsent(buf *bytes.Buffer, c *Consent) error {
	for _, s := range []string{c.Handle, c.Purpose, c.PurposeCode} {
		if err := writeString(buf, s); err != nil {
			return err
		}
	}
	if err := writeStrings(buf, c.DisplayDescriptions); err != nil {
		return err
	}
	for _, v := range []int64{c.DataFrom, c.DataTo, c.ValidFrom, c.ValidTo} {
		if err := binary.Write(buf, binary.BigEndian, v); err != nil {
			return err
		}
	}
	if err := writeString(buf, c.DataLifeUnit); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, c.DataLifeValue); err != nil {
		return err
	}
	if err := writeString(buf, c.FrequencyUnit); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.BigEndian, c.FrequencyValue); err != nil {
		return err
	}
	return writeStrings(buf, c.FITypes)
}

func readConsent(reader *bytes.Reader) (*Consent, error) {
	c := &Consent{}
	var err error
	for _, dst := range []*string{&c.Handle, &c.Purpose, &c.PurposeCode} {
		if *dst, err = readString(reader); err != nil {
			return nil, err
		}
	}
	if c.DisplayDescriptions, err = readStrings(reader); err != nil {
		return nil, err
	}
	for _, dst := range []*int64{&c.DataFrom, &c.DataTo, &c.ValidFrom, &c.ValidTo} {
		if err = binary.Read(reader, binary.BigEndian, dst); err != nil {
			return nil, err
		}
	}
	if c.DataLifeUnit, err = readString(reader); err != nil {
		return nil, err
	}
	if err = binary.Read(reader, binary.BigEndian, &c.DataLifeValue); err != nil {
		return nil, err
	}
	if c.FrequencyUnit, err = readString(reader); err != nil {
		return nil, err
	}
	if err = binary.Read(reader, binary.BigEndian, &c.FrequencyValue); err != nil {
		return nil, err
	}
	if c.FITypes, err = readStrings(reader); err != nil {
		return nil, err
	}
	return c, nil
}
