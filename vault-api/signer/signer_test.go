package signer

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/ledger"
	"github.com/mirailabs-co/partnr-defai-evm/vault-api/chainio/types"
)

var (
	vaultAddr  = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	receiver   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	feeAddr    = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	walletAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func word(x int64) []byte {
	return common.LeftPadBytes(big.NewInt(x).Bytes(), 32)
}

type SignerTestSuite struct {
	suite.Suite
	ctx      context.Context
	domain   Domain
	ledger   *ledger.Ledger
	verifier *Verifier
	operator *PrivateKeySigner
	stranger *PrivateKeySigner
}

func (suite *SignerTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.domain = NewDomain(big.NewInt(31337), vaultAddr)
	suite.ledger = ledger.New(ledger.NewManualClock(1_000))
	suite.verifier = NewVerifier(suite.domain, suite.ledger)

	key, err := crypto.GenerateKey()
	require.NoError(suite.T(), err)
	suite.operator = NewPrivateKeySigner(key)
	key, err = crypto.GenerateKey()
	require.NoError(suite.T(), err)
	suite.stranger = NewPrivateKeySigner(key)
}

func (suite *SignerTestSuite) withdrawMsg(amount int64) WithdrawMessage {
	msg, err := NewWithdrawMessage(big.NewInt(amount), receiver, []types.Fee{
		{FeeType: types.FeeTypePlatform, Amount: big.NewInt(300), Receiver: feeAddr},
	})
	require.NoError(suite.T(), err)
	return msg
}

func (suite *SignerTestSuite) Test_DomainSeparatorLayout() {
	typeHash := crypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	var enc []byte
	enc = append(enc, typeHash...)
	enc = append(enc, crypto.Keccak256([]byte(DomainName))...)
	enc = append(enc, crypto.Keccak256([]byte(DomainVersion))...)
	enc = append(enc, word(31337)...)
	enc = append(enc, common.LeftPadBytes(vaultAddr.Bytes(), 32)...)

	sep, err := suite.domain.Separator()
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), crypto.Keccak256Hash(enc), sep)
}

func (suite *SignerTestSuite) Test_WithdrawDigestLayout() {
	msg := suite.withdrawMsg(1_000)
	deadline := big.NewInt(2_000)

	typeHash := crypto.Keccak256([]byte("Withdraw(uint256 amount,address receiver,bytes32 feesHash,uint256 deadline)"))
	var enc []byte
	enc = append(enc, typeHash...)
	enc = append(enc, word(1_000)...)
	enc = append(enc, common.LeftPadBytes(receiver.Bytes(), 32)...)
	enc = append(enc, msg.FeesHash.Bytes()...)
	enc = append(enc, word(2_000)...)
	structHash := crypto.Keccak256Hash(enc)

	got, err := suite.domain.StructHash(msg, deadline)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), structHash, got)

	sep, err := suite.domain.Separator()
	require.NoError(suite.T(), err)
	want := crypto.Keccak256Hash([]byte{0x19, 0x01}, sep.Bytes(), structHash.Bytes())
	digest, err := suite.domain.Digest(msg, deadline)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), want, digest)
}

func (suite *SignerTestSuite) Test_RequestWithdrawPadsIdentifierRight() {
	var id types.RequestID
	for i := range id {
		id[i] = byte(i + 1)
	}
	typeHash := crypto.Keccak256([]byte("RequestWithdraw(bytes16 requestId,uint256 deadline)"))
	var enc []byte
	enc = append(enc, typeHash...)
	enc = append(enc, common.RightPadBytes(id[:], 32)...)
	enc = append(enc, word(77)...)

	got, err := suite.domain.StructHash(RequestWithdrawMessage{RequestID: id}, big.NewInt(77))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), crypto.Keccak256Hash(enc), got)
}

func (suite *SignerTestSuite) Test_DigestBindsEveryField() {
	base, err := suite.domain.Digest(suite.withdrawMsg(1_000), big.NewInt(2_000))
	require.NoError(suite.T(), err)

	other, err := suite.domain.Digest(suite.withdrawMsg(1_001), big.NewInt(2_000))
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), base, other)

	other, err = suite.domain.Digest(suite.withdrawMsg(1_000), big.NewInt(2_001))
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), base, other)

	other, err = NewDomain(big.NewInt(1), vaultAddr).Digest(suite.withdrawMsg(1_000), big.NewInt(2_000))
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), base, other)

	other, err = NewDomain(big.NewInt(31337), receiver).Digest(suite.withdrawMsg(1_000), big.NewInt(2_000))
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), base, other)
}

func (suite *SignerTestSuite) Test_HashFees() {
	fees := []types.Fee{{FeeType: types.FeeTypePerformance, Amount: big.NewInt(300), Receiver: feeAddr}}
	var enc []byte
	enc = append(enc, word(32)...)
	enc = append(enc, word(1)...)
	enc = append(enc, word(2)...)
	enc = append(enc, word(300)...)
	enc = append(enc, common.LeftPadBytes(feeAddr.Bytes(), 32)...)

	got, err := HashFees(fees)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), crypto.Keccak256Hash(enc), got)

	empty, err := HashFees(nil)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), crypto.Keccak256Hash(append(word(32), word(0)...)), empty)
}

func (suite *SignerTestSuite) Test_HashActions() {
	actions := []types.Execution{
		{Target: receiver, Params: []byte{0x01, 0x02}},
		{Target: feeAddr, Params: nil},
	}
	targets := crypto.Keccak256Hash(common.LeftPadBytes(receiver.Bytes(), 32), common.LeftPadBytes(feeAddr.Bytes(), 32))
	params := crypto.Keccak256Hash(crypto.Keccak256([]byte{0x01, 0x02}), crypto.Keccak256(nil))
	assert.Equal(suite.T(), targets, HashTargets(actions))
	assert.Equal(suite.T(), params, HashParams(actions))

	msg := NewExecuteMessage(vaultAddr, actions)
	assert.Equal(suite.T(), targets, msg.TargetsHash)
	assert.Equal(suite.T(), params, msg.ParamsHash)
}

func (suite *SignerTestSuite) Test_VerifyIndividualKey() {
	msg := suite.withdrawMsg(1_000)
	cred, digest, err := Sign(suite.operator, suite.domain, msg, big.NewInt(1_000))
	require.NoError(suite.T(), err)

	got, err := suite.verifier.Verify(suite.ctx, msg, cred, suite.operator.Address(), 1_000)
	require.NoError(suite.T(), err, "deadline equal to now is accepted")
	assert.Equal(suite.T(), digest, got)

	_, err = suite.verifier.Verify(suite.ctx, msg, cred, suite.operator.Address(), 1_001)
	assert.ErrorIs(suite.T(), err, ErrSignatureExpired)

	_, err = suite.verifier.Verify(suite.ctx, msg, cred, suite.stranger.Address(), 1_000)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)

	_, err = suite.verifier.Verify(suite.ctx, suite.withdrawMsg(999), cred, suite.operator.Address(), 1_000)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)

	_, err = suite.verifier.Verify(suite.ctx, msg, cred, common.Address{}, 1_000)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)
}

func (suite *SignerTestSuite) Test_RejectMalformedCredentials() {
	msg := suite.withdrawMsg(1_000)
	cred, digest, err := Sign(suite.operator, suite.domain, msg, big.NewInt(1_000))
	require.NoError(suite.T(), err)

	badV := cred
	badV.V = 29
	_, err = Recover(digest, badV)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)

	// s' = n - s with flipped v recovers the same key but is malleable
	n := crypto.S256().Params().N
	s := new(big.Int).SetBytes(cred.S[:])
	highS := cred
	new(big.Int).Sub(n, s).FillBytes(highS.S[:])
	highS.V = 55 - cred.V
	_, err = Recover(digest, highS)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)

	zero := types.Credential{V: 27, Deadline: big.NewInt(1_000)}
	_, err = Recover(digest, zero)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)
}

func (suite *SignerTestSuite) Test_VerifyContractSigner() {
	require.NoError(suite.T(), suite.ledger.Deploy(walletAddr, ledger.NewWallet(suite.operator.Address())))
	msg := NewExecuteMessage(vaultAddr, nil)

	cred, _, err := Sign(suite.operator, suite.domain, msg, big.NewInt(5_000))
	require.NoError(suite.T(), err)
	_, err = suite.verifier.Verify(suite.ctx, msg, cred, walletAddr, 1_000)
	assert.NoError(suite.T(), err)

	cred, _, err = Sign(suite.stranger, suite.domain, msg, big.NewInt(5_000))
	require.NoError(suite.T(), err)
	_, err = suite.verifier.Verify(suite.ctx, msg, cred, walletAddr, 1_000)
	assert.ErrorIs(suite.T(), err, ErrSignatureInvalid)
}

func (suite *SignerTestSuite) Test_KeystoreSigner() {
	ks := keystore.NewKeyStore(suite.T().TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	key, err := crypto.GenerateKey()
	require.NoError(suite.T(), err)
	account, err := ks.ImportECDSA(key, "pwd")
	require.NoError(suite.T(), err)

	s, err := NewKeystoreSigner(ks, account.Address, "pwd")
	require.NoError(suite.T(), err)
	msg := RequestWithdrawMessage{RequestID: types.NewRequestID()}
	cred, _, err := Sign(s, suite.domain, msg, big.NewInt(1_000))
	require.NoError(suite.T(), err)

	_, err = suite.verifier.Verify(suite.ctx, msg, cred, account.Address, 999)
	assert.NoError(suite.T(), err)

	_, err = NewKeystoreSigner(ks, receiver, "pwd")
	assert.Error(suite.T(), err)
}

func TestSignerTestSuite(t *testing.T) {
	suite.Run(t, new(SignerTestSuite))
}
