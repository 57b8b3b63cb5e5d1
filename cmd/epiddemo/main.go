// Command epiddemo exercises the full member/verifier pipeline against
// an in-memory toy group: it plays issuer just long enough to hand
// itself a group public key and one credential (issuance proper is out
// of scope, spec.md Non-goals), round-trips the group key through the
// wire file format, signs a message, and verifies it against a sig_rl
// that contains a different member before walking through the
// verifier_rl blacklist path. It exists to give config and zerolog a
// caller and to show the packages wired together end to end, the way
// the teacher's provers/cmd/main.go stands up a relayer from a Config.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/epidcore/epid2/config"
	"github.com/epidcore/epid2/groupkey"
	"github.com/epidcore/epid2/internal/curve"
	"github.com/epidcore/epid2/internal/field"
	"github.com/epidcore/epid2/member"
	"github.com/epidcore/epid2/rng"
	"github.com/epidcore/epid2/verifier"
	"github.com/epidcore/epid2/wire"
)

// acceptAllCA is a stand-in for the CA signature verification spec.md
// §1 puts out of scope; a real deployment injects one backed by its own
// issuing-CA public key.
type acceptAllCA struct{}

func (acceptAllCA) Verify(signedData, signature []byte) error { return nil }

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg := config.New(os.Args[1:]...)
	log.Info().Str("group_pubkey", cfg.GroupPubKeyPath).Bool("split_key", cfg.SplitKey).Msg("starting epid demo")

	source := rng.Func(func(buf []byte) error {
		_, err := rand.Read(buf)
		return err
	})

	pubKey, cred, err := issueToyGroupAndMember(source)
	if err != nil {
		log.Fatal().Err(err).Msg("toy issuance failed")
	}

	fileBytes, err := roundtripGroupPubKeyFile(pubKey, cfg.GroupPubKeyPath, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("group pubkey file round trip failed")
	}
	log.Info().Int("bytes", len(fileBytes)).Msg("group pubkey file encoded")

	gk, err := groupkey.New(pubKey)
	if err != nil {
		log.Fatal().Err(err).Msg("groupkey.New failed")
	}
	if err := gk.SetHashAlg(cfg.SplitKey); err != nil {
		log.Fatal().Err(err).Msg("SetHashAlg failed")
	}

	memberCtx := member.New(gk, cred, source)
	if err := memberCtx.Startup(); err != nil {
		log.Fatal().Err(err).Msg("member startup failed")
	}

	bsn := []byte(cfg.Basename)
	msg := []byte("hello from epiddemo")

	otherB, otherK, err := randomSigRLEntry(source)
	if err != nil {
		log.Fatal().Err(err).Msg("sig_rl entry generation failed")
	}
	sigRL := &wire.SigRL{Gid: gk.Gid, RlVer: 1, Entries: []wire.SigRLEntry{{B: otherB, K: otherK}}}

	sig, err := memberCtx.Sign(msg, bsn, sigRL)
	if err != nil {
		log.Fatal().Err(err).Msg("sign failed")
	}
	log.Info().Int("non_revoked_proofs", len(sig.SigmaI)).Msg("signature produced")

	verifierCtx := verifier.New(gk)
	verifierCtx.SetBasename(bsn)
	if err := verifierCtx.SetSigRl(*sigRL); err != nil {
		log.Fatal().Err(err).Msg("SetSigRl failed")
	}

	if err := verifierCtx.Verify(sig, msg); err != nil {
		log.Fatal().Err(err).Msg("verify unexpectedly rejected a fresh signature")
	}
	log.Info().Msg("signature verified")

	if err := verifierCtx.BlacklistSig(sig, msg); err != nil {
		log.Fatal().Err(err).Msg("blacklisting a freshly verified signature unexpectedly failed")
	}
	if err := verifierCtx.Verify(sig, msg); err == nil {
		log.Fatal().Msg("verify unexpectedly accepted a blacklisted signature")
	} else {
		log.Info().Err(err).Msg("blacklisted signature correctly rejected")
	}

	fmt.Println("demo complete")
}

// issueToyGroupAndMember stands in for an issuer: it picks h1, h2 and a
// secret gamma, sets w = [gamma]*g2, and credentials one member with
// fresh (x, f). This is scaffolding for the demo, not an issuer
// implementation (spec.md Non-goals).
func issueToyGroupAndMember(source rng.Source) (wire.GroupPubKey, member.Credential, error) {
	g1, g2 := curve.Generators()

	h1, err := randomG1(source)
	if err != nil {
		return wire.GroupPubKey{}, member.Credential{}, err
	}
	h2, err := randomG1(source)
	if err != nil {
		return wire.GroupPubKey{}, member.Credential{}, err
	}
	gamma, err := randomFp(source)
	if err != nil {
		return wire.GroupPubKey{}, member.Credential{}, err
	}
	w := g2.ScalarMul(field.FpToBigInt(&gamma))

	var gid wire.GID // octets 0-1 zero => hashing.SHA256

	x, err := randomFp(source)
	if err != nil {
		return wire.GroupPubKey{}, member.Credential{}, err
	}
	f, err := randomFp(source)
	if err != nil {
		return wire.GroupPubKey{}, member.Credential{}, err
	}

	var exp field.Fp
	exp.Add(&x, &f)
	var expInv field.Fp
	expInv.Inverse(&exp)

	fh1 := h1.ScalarMul(field.FpToBigInt(&f))
	var base curve.G1
	base.Add(&g1.G1Affine, &fh1.G1Affine)
	base.Add(&base.G1Affine, &h2.G1Affine)
	a := base.ScalarMul(field.FpToBigInt(&expInv))

	pubKey := wire.GroupPubKey{Gid: gid, H1: h1, H2: h2, W: w}
	cred := member.Credential{A: a, X: x, F: f}
	return pubKey, cred, nil
}

// roundtripGroupPubKeyFile wraps key in a GroupPubKeyFile, encodes it,
// writes it to path, then decodes it back through a CA verifier — the
// same load path a long-running verifier process uses on startup.
func roundtripGroupPubKeyFile(key wire.GroupPubKey, path string, log *zerolog.Logger) ([]byte, error) {
	file := wire.GroupPubKeyFile{
		Header: wire.Header{EpidVersion: wire.EpidVersion2_0, FileType: wire.FileTypeGroupPubKey},
		Key:    key,
	}
	encoded := file.Encode()

	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not persist group pubkey file, continuing in memory")
	}

	if _, err := wire.DecodeGroupPubKeyFile(encoded, acceptAllCA{}); err != nil {
		return nil, err
	}
	return encoded, nil
}

func randomSigRLEntry(source rng.Source) (curve.G1, curve.G1, error) {
	b, err := randomG1(source)
	if err != nil {
		return curve.G1{}, curve.G1{}, err
	}
	f, err := randomFp(source)
	if err != nil {
		return curve.G1{}, curve.G1{}, err
	}
	k := b.ScalarMul(field.FpToBigInt(&f))
	return b, k, nil
}

func randomG1(source rng.Source) (curve.G1, error) {
	s, err := randomFp(source)
	if err != nil {
		return curve.G1{}, err
	}
	g1, _ := curve.Generators()
	return g1.ScalarMul(field.FpToBigInt(&s)), nil
}

func randomFp(source rng.Source) (field.Fp, error) {
	buf := make([]byte, field.FpSize+16)
	if err := source.Read(buf); err != nil {
		var zero field.Fp
		return zero, err
	}
	return field.HashToFp(buf)
}
