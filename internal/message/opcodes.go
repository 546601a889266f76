package message

// Opcode identifies a top-level application message type on the wire.
type Opcode uint32

// Top-level opcodes with dedicated typed decoders. Everything else falls
// back to raw-tail capture as Message_<hex>.
const (
	OpcodeQualitiesPrivateUpdateInt             Opcode = 0x02CD
	OpcodeQualitiesUpdateInt                    Opcode = 0x02CE
	OpcodeQualitiesUpdateInstanceId             Opcode = 0x02DA
	OpcodeQualitiesPrivateUpdateAttribute2ndLvl Opcode = 0x02E9
	OpcodeMovementSetObjectMovement             Opcode = 0xF74C
	OpcodeEffectsSoundEvent                     Opcode = 0xF750
	OpcodeEffectsPlayScriptType                 Opcode = 0xF755
	OpcodeCommunicationTextboxString            Opcode = 0xF7E0
	OpcodeInventoryPickupEvent                  Opcode = 0xF74A
	OpcodeItemObjDescEvent                      Opcode = 0xF625
	OpcodeOrderedGameEvent                      Opcode = 0xF7B0
)

// GameEventType is the sub-event code carried inside an
// OpcodeOrderedGameEvent envelope.
type GameEventType uint32

// Sub-event codes with dedicated typed decoders.
const (
	EventCharacterCharacterOptionsEvent GameEventType = 0x00F7
	EventItemSetAppraiseInfo            GameEventType = 0x00C9
	EventItemServerSaysContainId        GameEventType = 0x0022
	EventItemWearItem                   GameEventType = 0x0023
	EventLoginPlayerDescription         GameEventType = 0x0013
	EventMagicUpdateEnchantment         GameEventType = 0x02C2
	EventMagicDispelEnchantment         GameEventType = 0x02C7
	EventUnknown                        GameEventType = 0xFFFFFFFF
)

// gameEventNames names every sub-event code the reference client defines,
// whether or not this dissector decodes its body. Unnamed codes format as
// GameEvent_<hex> at lookup time.
var gameEventNames = map[GameEventType]string{
	0x0003: "Allegiance_AllegianceUpdateAborted",
	0x0004: "Communication_PopUpString",
	0x0013: "Login_PlayerDescription",
	0x0020: "Allegiance_AllegianceUpdate",
	0x0021: "Social_FriendsUpdate",
	0x0022: "Item_ServerSaysContainId",
	0x0023: "Item_WearItem",
	0x0029: "Social_CharacterTitleTable",
	0x002B: "Social_AddOrSetCharacterTitle",
	0x0052: "Item_StopViewingObjectContents",
	0x0062: "Vendor_VendorInfo",
	0x0075: "Character_StartBarber",
	0x00A3: "Fellowship_Quit",
	0x00A4: "Fellowship_Dismiss",
	0x00B4: "Writing_BookOpen",
	0x00B6: "Writing_BookAddPageResponse",
	0x00B7: "Writing_BookDeletePageResponse",
	0x00B8: "Writing_BookPageDataResponse",
	0x00C3: "Item_GetInscriptionResponse",
	0x00C9: "Item_SetAppraiseInfo",
	0x00F7: "Character_CharacterOptionsEvent",
	0x0147: "Communication_ChannelBroadcast",
	0x0148: "Communication_ChannelList",
	0x0149: "Communication_ChannelIndex",
	0x0196: "Item_OnViewContents",
	0x019A: "Item_ServerSaysMoveItem",
	0x01A7: "Combat_HandleAttackDoneEvent",
	0x01A8: "Magic_RemoveSpell",
	0x01AC: "Combat_HandleVictimNotificationEventSelf",
	0x01AD: "Combat_HandleVictimNotificationEventOther",
	0x01B1: "Combat_HandleAttackerNotificationEvent",
	0x01B2: "Combat_HandleDefenderNotificationEvent",
	0x01B3: "Combat_HandleEvasionAttackerNotificationEvent",
	0x01B4: "Combat_HandleEvasionDefenderNotificationEvent",
	0x01B8: "Combat_HandleCommenceAttackEvent",
	0x01C0: "Combat_QueryHealthResponse",
	0x01C3: "Character_QueryAgeResponse",
	0x01C7: "Item_UseDone",
	0x01C8: "Allegiance_AllegianceUpdateDone",
	0x01C9: "Fellowship_FellowUpdateDone",
	0x01CA: "Fellowship_FellowStatsDone",
	0x01CB: "Item_AppraiseDone",
	0x01EA: "Character_ReturnPing",
	0x01F4: "Communication_SetSquelchDB",
	0x01FD: "Trade_RegisterTrade",
	0x01FE: "Trade_OpenTrade",
	0x01FF: "Trade_CloseTrade",
	0x0200: "Trade_AddToTrade",
	0x0201: "Trade_RemoveFromTrade",
	0x0202: "Trade_AcceptTrade",
	0x0203: "Trade_DeclineTrade",
	0x0205: "Trade_ResetTrade",
	0x0207: "Trade_TradeFailure",
	0x0208: "Trade_ClearTradeAcceptance",
	0x021D: "House_HouseProfile",
	0x0225: "House_HouseData",
	0x0226: "House_HouseStatus",
	0x0227: "House_UpdateRentTime",
	0x0228: "House_UpdateRentPayment",
	0x0248: "House_UpdateRestrictions",
	0x0257: "House_UpdateHAR",
	0x0259: "House_HouseTransaction",
	0x0264: "Item_QueryItemManaResponse",
	0x0271: "House_AvailableHouses",
	0x0274: "Character_ConfirmationRequest",
	0x0276: "Character_ConfirmationDone",
	0x027A: "Allegiance_AllegianceLoginNotificationEvent",
	0x027C: "Allegiance_AllegianceInfoResponseEvent",
	0x0281: "Game_JoinGameResponse",
	0x0282: "Game_StartGame",
	0x0283: "Game_MoveResponse",
	0x0284: "Game_OpponentTurn",
	0x0285: "Game_OpponentStalemateState",
	0x028A: "Communication_WeenieError",
	0x028B: "Communication_WeenieErrorWithString",
	0x028C: "Game_GameOver",
	0x0295: "Communication_ChatRoomTracker",
	0x02AE: "Admin_QueryPluginList",
	0x02B1: "Admin_QueryPlugin",
	0x02B3: "Admin_QueryPluginResponse2",
	0x02B4: "Inventory_SalvageOperationsResultData",
	0x02BD: "Communication_HearDirectSpeech",
	0x02BE: "Fellowship_FullUpdate",
	0x02BF: "Fellowship_Disband",
	0x02C0: "Fellowship_UpdateFellow",
	0x02C1: "Magic_UpdateSpell",
	0x02C2: "Magic_UpdateEnchantment",
	0x02C3: "Magic_RemoveEnchantment",
	0x02C4: "Magic_UpdateMultipleEnchantments",
	0x02C5: "Magic_RemoveMultipleEnchantments",
	0x02C6: "Magic_PurgeEnchantments",
	0x02C7: "Magic_DispelEnchantment",
	0x02C8: "Magic_DispelMultipleEnchantments",
	0x02C9: "Misc_PortalStormBrewing",
	0x02CA: "Misc_PortalStormImminent",
	0x02CB: "Misc_PortalStorm",
	0x02CC: "Misc_PortalStormSubsided",
	0x02EB: "Communication_TransientString",
	0x0312: "Magic_PurgeBadEnchantments",
	0x0314: "Social_SendClientContractTrackerTable",
	0x0315: "Social_SendClientContractTracker",
	0xFFFFFFFF: "Unknown",
}

// Name returns the event's symbolic name, or GameEvent_<hex> if the code is
// not in the reference table.
func (e GameEventType) Name() string {
	if name, ok := gameEventNames[e]; ok {
		return name
	}
	return hexName("GameEvent", uint32(e))
}
