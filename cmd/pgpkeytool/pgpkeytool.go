// This is free and unencumbered software released into the public domain.

// Command pgpkeytool builds, verifies, and generates OpenPGP
// transferable key objects using package pgpkey against the refpacket
// reference collaborator.
package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/openpgp/armor"

	"nullprogram.com/x/optparse"

	"github.com/skeeto/pgpkey/enums"
	"github.com/skeeto/pgpkey/pgpkey"
	"github.com/skeeto/pgpkey/refpacket"
)

const (
	cmdKeygen = iota
	cmdInspect
	cmdUpdate
)

// Print the message like fmt.Printf() and then os.Exit(1).
func fatal(format string, args ...interface{}) {
	buf := bytes.NewBufferString("pgpkeytool: ")
	fmt.Fprintf(buf, format, args...)
	buf.WriteRune('\n')
	os.Stderr.Write(buf.Bytes())
	os.Exit(1)
}

// firstLine returns the first line of a file, not including \r or \n.
func firstLine(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		if err := s.Err(); err != io.EOF {
			return nil, err
		}
		return nil, nil
	}
	return s.Bytes(), nil
}

type config struct {
	cmd  int
	args []string

	armor      bool
	check      []byte
	curve      enums.CurveName
	bits       int
	expire     uint32
	now        bool
	output     string
	passphrase string
	public     bool
	subkey     bool
	created    int64
	uid        string
	verbose    bool
}

func usage(w io.Writer) {
	bw := bufio.NewWriter(w)
	i := "  "
	b := "      "
	p := "pgpkeytool"
	f := func(s ...interface{}) {
		fmt.Fprintln(bw, s...)
	}
	f("Usage:")
	f(i, p, "-K -u id [-anps] [-b bits] [-C curve] [-e secs] [-P pwfile]")
	f(b, "-I [-p] file")
	f(b, "-U [-o out] dst src")
	f(b, "-p -I file      # print the toPublic() projection")
	f("Commands:")
	f(i, "-K, --keygen           generate a new key (default)")
	f(i, "-I, --inspect          report key/subkey/user status")
	f(i, "-U, --update           merge src into dst and print the result")
	f("Options:")
	f(i, "-a, --armor            encode output in ASCII armor")
	f(i, "-b, --bits N           RSA modulus size in bits [3072]")
	f(i, "-c, --check KEYID      require last Key ID bytes to match")
	f(i, "-C, --curve NAME       elliptic curve for key/subkey generation")
	f(i, "-e, --expire SECONDS   key expiration, seconds since creation")
	f(i, "-h, --help             print this help message")
	f(i, "-n, --now              use current time as creation date")
	f(i, "-o, --output FILE      write result to FILE instead of stdout")
	f(i, "-P, --passphrase FILE  read passphrase from file's first line")
	f(i, "-p, --public           only output/consider public material")
	f(i, "-s, --subkey           also generate an encryption subkey")
	f(i, "-t, --time SECONDS     key creation date (unix epoch seconds)")
	f(i, "-u, --uid USERID       user ID for the generated key")
	f(i, "-v, --verbose          print additional information")
	bw.Flush()
}

func parse() *config {
	conf := config{cmd: cmdKeygen, bits: 3072}

	options := []optparse.Option{
		{"keygen", 'K', optparse.KindNone},
		{"inspect", 'I', optparse.KindNone},
		{"update", 'U', optparse.KindNone},

		{"armor", 'a', optparse.KindNone},
		{"bits", 'b', optparse.KindRequired},
		{"check", 'c', optparse.KindRequired},
		{"curve", 'C', optparse.KindRequired},
		{"expire", 'e', optparse.KindRequired},
		{"help", 'h', optparse.KindNone},
		{"now", 'n', optparse.KindNone},
		{"output", 'o', optparse.KindRequired},
		{"passphrase", 'P', optparse.KindRequired},
		{"public", 'p', optparse.KindNone},
		{"subkey", 's', optparse.KindNone},
		{"time", 't', optparse.KindRequired},
		{"uid", 'u', optparse.KindRequired},
		{"verbose", 'v', optparse.KindNone},
	}

	results, rest, err := optparse.Parse(options, os.Args)
	if err != nil {
		usage(os.Stderr)
		fatal("%s", err)
	}
	for _, result := range results {
		switch result.Long {
		case "keygen":
			conf.cmd = cmdKeygen
		case "inspect":
			conf.cmd = cmdInspect
		case "update":
			conf.cmd = cmdUpdate

		case "armor":
			conf.armor = true
		case "bits":
			bits, err := strconv.Atoi(result.Optarg)
			if err != nil {
				fatal("--bits (-b): %s", err)
			}
			conf.bits = bits
		case "check":
			check, err := hex.DecodeString(result.Optarg)
			if err != nil {
				fatal("%s: %q", err, result.Optarg)
			}
			conf.check = check
		case "curve":
			conf.curve = enums.CurveName(result.Optarg)
		case "expire":
			secs, err := strconv.ParseUint(result.Optarg, 10, 32)
			if err != nil {
				fatal("--expire (-e): %s", err)
			}
			conf.expire = uint32(secs)
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		case "now":
			conf.created = time.Now().Unix()
			conf.now = true
		case "output":
			conf.output = result.Optarg
		case "passphrase":
			conf.passphrase = result.Optarg
		case "public":
			conf.public = true
		case "subkey":
			conf.subkey = true
		case "time":
			secs, err := strconv.ParseUint(result.Optarg, 10, 32)
			if err != nil {
				fatal("--time (-t): %s", err)
			}
			conf.created = int64(secs)
		case "uid":
			conf.uid = result.Optarg
			if len(conf.uid) > 255 {
				fatal("user ID length must be <= 255 bytes")
			}
			if !utf8.ValidString(conf.uid) {
				fatal("user ID must be valid UTF-8")
			}
		case "verbose":
			conf.verbose = true
		}
	}

	conf.args = rest
	switch conf.cmd {
	case cmdKeygen:
		if conf.uid == "" {
			fatal("--uid is required for --keygen")
		}
	case cmdInspect:
		if len(conf.args) != 1 {
			fatal("--inspect takes exactly one file argument")
		}
	case cmdUpdate:
		if len(conf.args) != 2 {
			fatal("--update takes exactly two file arguments: dst src")
		}
	}

	return &conf
}

func readPassphrase(conf *config) []byte {
	if conf.passphrase == "" {
		return nil
	}
	line, err := firstLine(conf.passphrase)
	if err != nil {
		fatal("%s: %s", err, conf.passphrase)
	}
	return line
}

func writeOutput(conf *config, raw []byte, armorType string) {
	out := raw
	if conf.armor {
		var buf bytes.Buffer
		w, err := armor.Encode(&buf, armorType, nil)
		if err != nil {
			fatal("%s", err)
		}
		if _, err := w.Write(raw); err != nil {
			fatal("%s", err)
		}
		if err := w.Close(); err != nil {
			fatal("%s", err)
		}
		out = buf.Bytes()
	}

	if conf.output == "" {
		if _, err := os.Stdout.Write(out); err != nil {
			fatal("%s", err)
		}
		return
	}
	if err := os.WriteFile(conf.output, out, 0600); err != nil {
		fatal("%s", err)
	}
}

func loadKey(filename string) *pgpkey.Key {
	raw, err := os.ReadFile(filename)
	if err != nil {
		fatal("%s", err)
	}

	in := io.Reader(bytes.NewReader(raw))
	if block, err := armor.Decode(bytes.NewReader(raw)); err == nil {
		in = block.Body
	}

	list, err := refpacket.ParsePacketList(in)
	if err != nil {
		fatal("%s: %s", filename, err)
	}
	key, err := pgpkey.Build(list)
	if err != nil {
		fatal("%s: %s", filename, err)
	}
	return key
}

func runKeygen(conf *config) {
	created := time.Unix(conf.created, 0)
	if conf.created == 0 {
		created = time.Now()
	}

	opts := pgpkey.GenerateOptions{
		NumBits:           conf.bits,
		Curve:             conf.curve,
		Subkey:            conf.subkey,
		UserIDs:           [][]byte{[]byte(conf.uid)},
		Passphrase:        readPassphrase(conf),
		KeyExpirationTime: conf.expire,
		Created:           created,
	}

	key, err := pgpkey.Generate(opts, refpacket.Factory{}, pgpkey.DefaultConfig())
	if err != nil {
		fatal("%s", err)
	}

	if conf.verbose {
		fmt.Fprintf(os.Stderr, "Key ID: %s\n", key.PrimaryKey.KeyID().Hex())
	}
	checked := checkTail(key.PrimaryKey.KeyID(), conf.check)
	if len(conf.check) > 0 && !bytes.Equal(conf.check, checked) {
		fatal("Key ID does not match --check (-c):\n  %x != %x", checked, conf.check)
	}

	if conf.public {
		key = pgpkey.ToPublic(key)
	}

	list := refpacket.NewPacketList()
	list = pgpkey.ToPacketList(key, list)
	raw := concatRaw(list)

	armorType := "PGP PRIVATE KEY BLOCK"
	if key.IsPublic() {
		armorType = "PGP PUBLIC KEY BLOCK"
	}
	writeOutput(conf, raw, armorType)
}

func checkTail(id pgpkey.KeyID, check []byte) []byte {
	if len(check) == 0 || len(check) > len(id) {
		return nil
	}
	return id[len(id)-len(check):]
}

func concatRaw(list pgpkey.PacketList) []byte {
	var out []byte
	for i := 0; i < list.Len(); i++ {
		out = append(out, list.At(i).Raw()...)
	}
	return out
}

func runInspect(conf *config) {
	key := loadKey(conf.args[0])
	now := time.Now()
	if conf.now || conf.created != 0 {
		now = time.Unix(conf.created, 0)
	}
	cfg := pgpkey.DefaultConfig()

	status := pgpkey.VerifyPrimaryKey(key, now, cfg)
	fmt.Printf("primary key: %s  fingerprint=%s  status=%s\n",
		key.PrimaryKey.Algorithm(), key.PrimaryKey.Fingerprint().Hex(), status)

	if _, user, _, ok := pgpkey.GetPrimaryUser(key, now, cfg); ok {
		fmt.Printf("primary user: %s\n", user.Packet.Bytes())
	} else {
		fmt.Println("primary user: none")
	}

	for i, sub := range key.SubKeys {
		subStatus := pgpkey.VerifySubKey(key, sub, now, cfg)
		fmt.Printf("subkey %d: %s  fingerprint=%s  status=%s\n",
			i, sub.Packet.Algorithm(), sub.Packet.Fingerprint().Hex(), subStatus)
	}

	if conf.public {
		pub := pgpkey.ToPublic(key)
		list := refpacket.NewPacketList()
		list = pgpkey.ToPacketList(pub, list)
		writeOutput(conf, concatRaw(list), "PGP PUBLIC KEY BLOCK")
	}
}

func runUpdate(conf *config) {
	dst := loadKey(conf.args[0])
	src := loadKey(conf.args[1])

	if err := pgpkey.Update(dst, src, time.Now(), pgpkey.DefaultConfig()); err != nil {
		fatal("%s", err)
	}

	list := refpacket.NewPacketList()
	list = pgpkey.ToPacketList(dst, list)
	armorType := "PGP PRIVATE KEY BLOCK"
	if dst.IsPublic() {
		armorType = "PGP PUBLIC KEY BLOCK"
	}
	writeOutput(conf, concatRaw(list), armorType)
}

func main() {
	conf := parse()
	switch conf.cmd {
	case cmdKeygen:
		runKeygen(conf)
	case cmdInspect:
		runInspect(conf)
	case cmdUpdate:
		runUpdate(conf)
	}
}
