package game

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const gameABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "string", "name": "name", "type": "string"}
    ],
    "name": "NewPlayer",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "string", "name": "battleName", "type": "string"},
      {"indexed": true, "internalType": "address", "name": "player1", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "player2", "type": "address"}
    ],
    "name": "NewBattle",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "owner", "type": "address"},
      {"indexed": false, "internalType": "uint256", "name": "id", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "attackStrength", "type": "uint256"},
      {"indexed": false, "internalType": "uint256", "name": "defenseStrength", "type": "uint256"}
    ],
    "name": "NewGameToken",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "string", "name": "battleName", "type": "string"},
      {"indexed": true, "internalType": "bool", "name": "isFirstMove", "type": "bool"}
    ],
    "name": "BattleMove",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "address[]", "name": "damagedPlayers", "type": "address[]"}
    ],
    "name": "RoundEnded",
    "type": "event"
  },
  {
    "anonymous": false,
    "inputs": [
      {"indexed": false, "internalType": "string", "name": "battleName", "type": "string"},
      {"indexed": true, "internalType": "address", "name": "winner", "type": "address"},
      {"indexed": true, "internalType": "address", "name": "loser", "type": "address"}
    ],
    "name": "BattleEnded",
    "type": "event"
  }
]`

var (
	gameABI     abi.ABI
	gameABIOnce sync.Once
	gameABIErr  error
)

// GameABI returns the parsed game contract ABI.
func GameABI() (abi.ABI, error) {
	gameABIOnce.Do(func() {
		gameABI, gameABIErr = abi.JSON(strings.NewReader(gameABIJSON))
	})
	return gameABI, gameABIErr
}
